package documents

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vault-backend/internal/activity"
	"vault-backend/internal/quota"
	"vault-backend/internal/shared/storage/object"
	"vault-backend/internal/shared/storage/object/local"
)

type fixture struct {
	service  *Service
	repo     *MemoryRepo
	store    object.ObjectStore
	ledger   *quota.Ledger
	activity *activity.MemoryRepo
}

func newFixture(t *testing.T, limit int64) *fixture {
	t.Helper()
	store := local.New(t.TempDir(), "http://localhost:8080")
	repo := NewMemoryRepo()
	ledger := quota.NewLedger(quota.NewMemoryStore(limit))
	activityRepo := activity.NewMemoryRepo()
	svc := NewService(repo, store, ledger, activity.NewRecorder(activityRepo), nil)
	return &fixture{service: svc, repo: repo, store: store, ledger: ledger, activity: activityRepo}
}

func pdfUpload(name string, size int) UploadInput {
	return UploadInput{
		FileName:    name,
		ContentType: "application/pdf",
		Reader:      bytes.NewReader(bytes.Repeat([]byte("a"), size)),
	}
}

func TestUploadIndexesAndCommitsQuota(t *testing.T) {
	fx := newFixture(t, 1<<20)
	ctx := context.Background()

	in := pdfUpload("passport.pdf", 2048)
	in.Category = "identity"
	in.TagsJSON = `["travel","id"]`
	in.MetadataJSON = `{"issuer":"State Dept"}`

	doc, err := fx.service.Upload(ctx, "user-1", in)
	require.NoError(t, err)
	require.Equal(t, "passport", doc.Name)
	require.Equal(t, TypePDF, doc.Type)
	require.Equal(t, CategoryIdentity, doc.Category)
	require.Equal(t, FilePDF, doc.FileType)
	require.Equal(t, int64(2048), doc.SizeBytes)
	require.Equal(t, []string{"travel", "id"}, doc.Tags)
	require.Equal(t, "State Dept", doc.Metadata.Issuer)
	require.NotEmpty(t, doc.FileURL)
	require.Empty(t, doc.ThumbnailURL)

	u, err := fx.ledger.Usage(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, int64(2048), u.UsedBytes)

	entries, err := fx.activity.ListByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, activity.ActionUpload, entries[0].Action)
	require.Equal(t, doc.Name, entries[0].DocumentName)
}

func TestUploadImageGetsThumbnail(t *testing.T) {
	fx := newFixture(t, 1<<20)

	in := UploadInput{
		FileName:    "photo.png",
		ContentType: "image/png; charset=binary",
		Reader:      strings.NewReader("not really a png"),
	}
	doc, err := fx.service.Upload(context.Background(), "user-1", in)
	require.NoError(t, err)
	require.Equal(t, FilePNG, doc.FileType)
	require.Equal(t, TypeImage, doc.Type)
	require.Equal(t, doc.FileURL, doc.ThumbnailURL)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	fx := newFixture(t, 1<<20)

	in := UploadInput{
		FileName:    "virus.exe",
		ContentType: "application/x-msdownload",
		Reader:      strings.NewReader("nope"),
	}
	_, err := fx.service.Upload(context.Background(), "user-1", in)
	require.ErrorIs(t, err, ErrUnsupportedType)

	u, _ := fx.ledger.Usage(context.Background(), "user-1")
	require.Zero(t, u.UsedBytes)
}

func TestUploadQuotaExceededRollsBack(t *testing.T) {
	fx := newFixture(t, 100)
	ctx := context.Background()

	_, err := fx.service.Upload(ctx, "user-1", pdfUpload("big.pdf", 500))
	var exceeded *quota.ExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, int64(500), exceeded.Requested)

	// Nothing indexed, nothing charged.
	docs, err := fx.service.List(ctx, "user-1", ListFilter{})
	require.NoError(t, err)
	require.Empty(t, docs)
	u, _ := fx.ledger.Usage(ctx, "user-1")
	require.Zero(t, u.UsedBytes)
}

func TestUploadMalformedTagsAndMetadataAreDropped(t *testing.T) {
	fx := newFixture(t, 1<<20)

	in := pdfUpload("lease.pdf", 64)
	in.TagsJSON = `{"not":"an array"}`
	in.MetadataJSON = `[broken`
	doc, err := fx.service.Upload(context.Background(), "user-1", in)
	require.NoError(t, err)
	require.Empty(t, doc.Tags)
	require.Equal(t, Metadata{}, doc.Metadata)
}

type failingAddStore struct {
	quota.Store
}

func (failingAddStore) Add(ctx context.Context, userID string, delta int64) (int64, error) {
	return 0, errors.New("ledger write failed")
}

func TestUploadCommitFailureRemovesRecordAndBytes(t *testing.T) {
	store := local.New(t.TempDir(), "http://localhost:8080")
	repo := NewMemoryRepo()
	ledger := quota.NewLedger(failingAddStore{Store: quota.NewMemoryStore(1 << 20)})
	svc := NewService(repo, store, ledger, activity.NewRecorder(activity.NewMemoryRepo()), nil)

	_, err := svc.Upload(context.Background(), "user-1", pdfUpload("doc.pdf", 128))
	require.Error(t, err)

	docs, err := repo.ListByUser(context.Background(), "user-1", ListFilter{})
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestOwnershipIsolation(t *testing.T) {
	fx := newFixture(t, 1<<20)
	ctx := context.Background()

	doc, err := fx.service.Upload(ctx, "user-a", pdfUpload("private.pdf", 64))
	require.NoError(t, err)

	_, err = fx.service.Get(ctx, "user-b", doc.ID)
	require.ErrorIs(t, err, ErrNotFound)
	err = fx.service.Delete(ctx, "user-b", doc.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// Owner still sees it.
	_, err = fx.service.Get(ctx, "user-a", doc.ID)
	require.NoError(t, err)
}

func TestSearchMatchesNameOrTags(t *testing.T) {
	fx := newFixture(t, 1<<20)
	ctx := context.Background()

	a := pdfUpload("tax-return-2025.pdf", 64)
	_, err := fx.service.Upload(ctx, "user-1", a)
	require.NoError(t, err)

	b := pdfUpload("lease.pdf", 64)
	b.TagsJSON = `["taxes","home"]`
	_, err = fx.service.Upload(ctx, "user-1", b)
	require.NoError(t, err)

	c := pdfUpload("recipes.pdf", 64)
	_, err = fx.service.Upload(ctx, "user-1", c)
	require.NoError(t, err)

	docs, err := fx.service.List(ctx, "user-1", ListFilter{Search: "TAX"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestDeleteReleasesQuotaAndLogs(t *testing.T) {
	fx := newFixture(t, 1<<20)
	ctx := context.Background()

	doc, err := fx.service.Upload(ctx, "user-1", pdfUpload("old.pdf", 300))
	require.NoError(t, err)

	require.NoError(t, fx.service.Delete(ctx, "user-1", doc.ID))

	u, _ := fx.ledger.Usage(ctx, "user-1")
	require.Zero(t, u.UsedBytes)

	_, err = fx.store.Open(ctx, doc.Locator())
	require.ErrorIs(t, err, object.ErrNotFound)

	entries, err := fx.activity.ListByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Equal(t, activity.ActionDelete, entries[0].Action)
	require.Equal(t, "old", entries[0].DocumentName)
}

func TestToggleArchiveLogsFavoriteDoesNot(t *testing.T) {
	fx := newFixture(t, 1<<20)
	ctx := context.Background()

	doc, err := fx.service.Upload(ctx, "user-1", pdfUpload("doc.pdf", 64))
	require.NoError(t, err)

	doc, err = fx.service.ToggleArchive(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	require.True(t, doc.IsArchived)

	// Archived documents leave the default listing and appear under archived.
	active, err := fx.service.List(ctx, "user-1", ListFilter{})
	require.NoError(t, err)
	require.Empty(t, active)
	archived, err := fx.service.List(ctx, "user-1", ListFilter{Archived: true})
	require.NoError(t, err)
	require.Len(t, archived, 1)

	doc, err = fx.service.ToggleFavorite(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	require.True(t, doc.IsFavorite)

	entries, err := fx.activity.ListByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	// upload + archive only; favorite is silent.
	require.Len(t, entries, 2)
	require.Equal(t, activity.ActionArchive, entries[0].Action)
}

func TestUpdateLogsRenameOnlyWhenNameChanges(t *testing.T) {
	fx := newFixture(t, 1<<20)
	ctx := context.Background()

	doc, err := fx.service.Upload(ctx, "user-1", pdfUpload("doc.pdf", 64))
	require.NoError(t, err)

	same := doc.Name
	_, err = fx.service.Update(ctx, "user-1", doc.ID, Update{Name: &same})
	require.NoError(t, err)

	renamed := "renamed"
	updated, err := fx.service.Update(ctx, "user-1", doc.ID, Update{Name: &renamed})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)

	empty := "   "
	_, err = fx.service.Update(ctx, "user-1", doc.ID, Update{Name: &empty})
	require.ErrorIs(t, err, ErrInvalidInput)

	entries, err := fx.activity.ListByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	// upload + one rename.
	require.Len(t, entries, 2)
	require.Equal(t, activity.ActionRename, entries[0].Action)
}

func TestUpdateDeduplicatesTags(t *testing.T) {
	fx := newFixture(t, 1<<20)
	ctx := context.Background()

	doc, err := fx.service.Upload(ctx, "user-1", pdfUpload("doc.pdf", 64))
	require.NoError(t, err)

	tags := []string{"travel", "travel", " id ", "travel", "", "id"}
	updated, err := fx.service.Update(ctx, "user-1", doc.ID, Update{Tags: &tags})
	require.NoError(t, err)
	require.Equal(t, []string{"travel", "id"}, updated.Tags)

	// The stored record holds the collapsed set too.
	stored, err := fx.repo.GetByID(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"travel", "id"}, stored.Tags)
}

func TestDownloadLogsAndReturnsDocument(t *testing.T) {
	fx := newFixture(t, 1<<20)
	ctx := context.Background()

	doc, err := fx.service.Upload(ctx, "user-1", pdfUpload("doc.pdf", 64))
	require.NoError(t, err)

	got, err := fx.service.Download(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)

	reader, err := fx.service.OpenFile(ctx, got)
	require.NoError(t, err)
	defer reader.Close()

	entries, err := fx.activity.ListByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Equal(t, activity.ActionDownload, entries[0].Action)
}

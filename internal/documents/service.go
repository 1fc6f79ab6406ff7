package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vault-backend/internal/activity"
	"vault-backend/internal/quota"
	"vault-backend/internal/shared/storage/object"
	"vault-backend/internal/shared/telemetry"
)

// Service implements document operations on top of the index repo, the
// object store, the quota ledger and the activity recorder.
type Service struct {
	repo     Repo
	store    object.ObjectStore
	ledger   *quota.Ledger
	recorder *activity.Recorder
	allowed  map[string]struct{}
}

// NewService constructs a Service. allowedMIME lists the accepted content
// types; an empty list means every type the index understands is accepted.
func NewService(repo Repo, store object.ObjectStore, ledger *quota.Ledger, recorder *activity.Recorder, allowedMIME []string) *Service {
	allowed := make(map[string]struct{}, len(allowedMIME))
	for _, m := range allowedMIME {
		allowed[normalizeMIME(m)] = struct{}{}
	}
	return &Service{repo: repo, store: store, ledger: ledger, recorder: recorder, allowed: allowed}
}

func normalizeMIME(contentType string) string {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

// UploadInput carries the multipart fields of an upload request. TagsJSON
// and MetadataJSON are raw form values; malformed JSON in either is dropped
// rather than failing the upload.
type UploadInput struct {
	FileName     string
	ContentType  string
	Reader       io.Reader
	Name         string
	Type         string
	Category     string
	TagsJSON     string
	MetadataJSON string
}

// Upload runs the ingestion pipeline: validate the content type, persist
// the bytes, check the quota against the actual stored size, index the
// record, then commit the ledger. Every step after the store call has a
// compensating cleanup so a failure never leaves bytes without a record or
// a record without accounting.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Document, error) {
	if in.Reader == nil || in.FileName == "" {
		return Document{}, ErrNoFile
	}
	mime := normalizeMIME(in.ContentType)
	fileType, ok := FileTypeFromMIME(mime)
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, in.ContentType)
	}
	if len(s.allowed) > 0 {
		if _, ok := s.allowed[mime]; !ok {
			return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, in.ContentType)
		}
	}

	locator, size, err := s.store.Store(ctx, userID, in.FileName, mime, in.Reader)
	if err != nil {
		return Document{}, fmt.Errorf("store file: %w", err)
	}

	// Quota is checked against the actual byte count, not the declared
	// Content-Length, so the bytes have to land first.
	if err := s.ledger.Check(ctx, userID, size); err != nil {
		s.cleanupBytes(locator, userID)
		return Document{}, err
	}

	now := time.Now().UTC()
	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            uploadName(in.Name, in.FileName),
		Type:            uploadType(in.Type, fileType),
		Category:        ParseCategory(in.Category),
		FileType:        fileType,
		SizeBytes:       size,
		Tags:            parseTagsJSON(userID, in.TagsJSON),
		Metadata:        parseMetadataJSON(userID, in.MetadataJSON),
		FileURL:         locator.PublicURL,
		StorageProvider: locator.Provider,
		StorageKey:      locator.DeleteKey,
		ResourceKind:    locator.ResourceKind,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if fileType.IsImage() {
		doc.ThumbnailURL = locator.PublicURL
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		s.cleanupBytes(locator, userID)
		return Document{}, fmt.Errorf("index document: %w", err)
	}

	if _, err := s.ledger.Commit(ctx, userID, size); err != nil {
		if delErr := s.repo.Delete(ctx, userID, doc.ID); delErr != nil {
			telemetry.Error("upload rollback: remove index record failed", map[string]any{
				"document_id": doc.ID, "error": delErr.Error(),
			})
		}
		s.cleanupBytes(locator, userID)
		return Document{}, fmt.Errorf("commit quota: %w", err)
	}

	s.recorder.Record(ctx, userID, activity.ActionUpload, doc.ID, doc.Name)
	return doc, nil
}

// cleanupBytes removes stored bytes during pipeline rollback. Runs on a
// fresh context so cleanup still happens when the request was canceled.
func (s *Service) cleanupBytes(loc object.Locator, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, loc); err != nil {
		telemetry.Error("upload rollback: remove stored bytes failed", map[string]any{
			"user_id": userID, "delete_key": loc.DeleteKey, "error": err.Error(),
		})
	}
}

func uploadName(name, fileName string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func uploadType(raw string, fileType FileType) DocumentType {
	if strings.TrimSpace(raw) != "" {
		return ParseDocumentType(raw)
	}
	if fileType == FilePDF {
		return TypePDF
	}
	return TypeImage
}

func parseTagsJSON(userID, raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		telemetry.Warn("ignoring malformed tags field", map[string]any{
			"user_id": userID, "error": err.Error(),
		})
		return []string{}
	}
	return normalizeTags(tags)
}

// normalizeTags trims, drops empties and collapses duplicates keeping
// first-seen order. Tags behave as an ordered set everywhere they are
// written.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func parseMetadataJSON(userID, raw string) Metadata {
	if strings.TrimSpace(raw) == "" {
		return Metadata{}
	}
	var md Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		telemetry.Warn("ignoring malformed metadata field", map[string]any{
			"user_id": userID, "error": err.Error(),
		})
		return Metadata{}
	}
	return md
}

// Get fetches one document and logs a view.
func (s *Service) Get(ctx context.Context, userID, docID string) (Document, error) {
	doc, err := s.repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, err
	}
	s.recorder.Record(ctx, userID, activity.ActionView, doc.ID, doc.Name)
	return doc, nil
}

// List returns the user's documents matching the filter, newest first.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Document, error) {
	docs, err := s.repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// Update applies partial changes. A rename is logged; other edits are not.
func (s *Service) Update(ctx context.Context, userID, docID string, upd Update) (Document, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return Document{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		upd.Name = &trimmed
	}
	if upd.Tags != nil {
		tags := normalizeTags(*upd.Tags)
		upd.Tags = &tags
	}

	before, err := s.repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, err
	}
	doc, err := s.repo.Update(ctx, userID, docID, upd, time.Now().UTC())
	if err != nil {
		return Document{}, err
	}
	if upd.Name != nil && before.Name != doc.Name {
		s.recorder.Record(ctx, userID, activity.ActionRename, doc.ID, doc.Name)
	}
	return doc, nil
}

// ToggleArchive flips the archived flag. Both directions log an archive
// entry.
func (s *Service) ToggleArchive(ctx context.Context, userID, docID string) (Document, error) {
	doc, err := s.repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, err
	}
	next := !doc.IsArchived
	doc, err = s.repo.Update(ctx, userID, docID, Update{IsArchived: &next}, time.Now().UTC())
	if err != nil {
		return Document{}, err
	}
	s.recorder.Record(ctx, userID, activity.ActionArchive, doc.ID, doc.Name)
	return doc, nil
}

// ToggleFavorite flips the favorite flag. Favorites do not show up in the
// activity feed.
func (s *Service) ToggleFavorite(ctx context.Context, userID, docID string) (Document, error) {
	doc, err := s.repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, err
	}
	next := !doc.IsFavorite
	return s.repo.Update(ctx, userID, docID, Update{IsFavorite: &next}, time.Now().UTC())
}

// Delete removes the index record first, then releases quota, then removes
// the stored bytes. The index delete is the gate: if it fails nothing else
// runs. A failed byte delete is logged and swallowed since the record and
// accounting are already consistent.
func (s *Service) Delete(ctx context.Context, userID, docID string) error {
	doc, err := s.repo.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, docID); err != nil {
		return err
	}
	if err := s.ledger.Release(ctx, userID, doc.SizeBytes); err != nil {
		telemetry.Error("quota release failed after delete", map[string]any{
			"user_id": userID, "document_id": docID, "error": err.Error(),
		})
	}
	if err := s.store.Delete(ctx, doc.Locator()); err != nil {
		telemetry.Error("stored bytes delete failed", map[string]any{
			"user_id": userID, "document_id": docID, "error": err.Error(),
		})
	}
	s.recorder.Record(ctx, userID, activity.ActionDelete, doc.ID, doc.Name)
	return nil
}

// Download resolves the document and logs a download. The caller streams or
// redirects based on the storage provider.
func (s *Service) Download(ctx context.Context, userID, docID string) (Document, error) {
	doc, err := s.repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, err
	}
	s.recorder.Record(ctx, userID, activity.ActionDownload, doc.ID, doc.Name)
	return doc, nil
}

// OpenFile opens the stored bytes for streaming.
func (s *Service) OpenFile(ctx context.Context, doc Document) (io.ReadCloser, error) {
	return s.store.Open(ctx, doc.Locator())
}

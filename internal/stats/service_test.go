package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"vault-backend/internal/documents"
	"vault-backend/internal/quota"
)

func seedDocument(t *testing.T, repo documents.Repo, userID string, category documents.Category, size int64, archived bool) {
	t.Helper()
	now := time.Now().UTC()
	err := repo.Create(context.Background(), documents.Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       "doc",
		Type:       documents.TypePDF,
		Category:   category,
		FileType:   documents.FilePDF,
		SizeBytes:  size,
		FileURL:    "http://localhost/x.pdf",
		IsArchived: archived,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
}

func TestOverviewCountsAndBreakdown(t *testing.T) {
	repo := documents.NewMemoryRepo()
	store := quota.NewMemoryStore(1 << 30)
	ledger := quota.NewLedger(store)
	svc := NewService(repo, ledger)
	ctx := context.Background()

	seedDocument(t, repo, "user-1", documents.CategoryIdentity, 100, false)
	seedDocument(t, repo, "user-1", documents.CategoryIdentity, 200, false)
	seedDocument(t, repo, "user-1", documents.CategoryLegal, 300, false)
	seedDocument(t, repo, "user-1", documents.CategoryTravel, 400, true)
	_, err := ledger.Commit(ctx, "user-1", 1000)
	require.NoError(t, err)

	overview, err := svc.Overview(ctx, "user-1")
	require.NoError(t, err)

	// Archived documents drop out of counts but not out of used bytes.
	require.Equal(t, 3, overview.DocumentCount)
	require.Equal(t, int64(1000), overview.UsedBytes)
	require.Equal(t, int64(1<<30), overview.LimitBytes)

	require.Equal(t, 2, overview.CategoryBreakdown["identity"])
	require.Equal(t, 1, overview.CategoryBreakdown["legal"])
	require.Equal(t, 0, overview.CategoryBreakdown["travel"])
	// Every category appears, even with zero documents.
	require.Len(t, overview.CategoryBreakdown, len(documents.Categories))
}

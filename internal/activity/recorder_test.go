package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Create(ctx context.Context, entry Entry) error { return errors.New("db down") }
func (failingRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	return nil, errors.New("db down")
}

func TestRecordIsBestEffort(t *testing.T) {
	rec := NewRecorder(failingRepo{})
	// Must not panic or propagate the repo error.
	rec.Record(context.Background(), "user-1", ActionUpload, "doc-1", "passport.pdf")
}

func TestListNewestFirstAndClamped(t *testing.T) {
	rec := NewRecorder(NewMemoryRepo())
	ctx := context.Background()

	rec.Record(ctx, "user-1", ActionUpload, "doc-1", "passport.pdf")
	rec.Record(ctx, "user-1", ActionView, "doc-1", "passport.pdf")
	rec.Record(ctx, "user-1", ActionDelete, "doc-1", "passport.pdf")

	entries, err := rec.ListForUser(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, ActionDelete, entries[0].Action)
	require.Equal(t, ActionView, entries[1].Action)

	// Limit above the cap falls back to the cap, zero to the default.
	all, err := rec.ListForUser(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestListIsEmptySliceNotNil(t *testing.T) {
	rec := NewRecorder(NewMemoryRepo())
	entries, err := rec.ListForUser(context.Background(), "nobody", 0)
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestSnapshotSurvivesWithoutDocument(t *testing.T) {
	rec := NewRecorder(NewMemoryRepo())
	ctx := context.Background()

	// Delete entries carry the name captured at record time; nothing here
	// references a live document row.
	rec.Record(ctx, "user-1", ActionDelete, "doc-gone", "old-lease.pdf")

	entries, err := rec.ListForUser(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "old-lease.pdf", entries[0].DocumentName)
	require.Equal(t, "doc-gone", entries[0].DocumentID)
}

func TestRoutedRepoSplitsGuests(t *testing.T) {
	primary := NewMemoryRepo()
	guest := NewMemoryRepo()
	rec := NewRecorder(&RoutedRepo{Primary: primary, Guest: guest})
	ctx := context.Background()

	rec.Record(ctx, "guest:abc", ActionUpload, "doc-1", "temp.pdf")
	rec.Record(ctx, "user-1", ActionUpload, "doc-2", "mine.pdf")

	guestEntries, err := guest.ListByUser(ctx, "guest:abc", 10)
	require.NoError(t, err)
	require.Len(t, guestEntries, 1)

	primaryEntries, err := primary.ListByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, primaryEntries, 1)
}

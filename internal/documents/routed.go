package documents

import (
	"context"
	"time"

	"vault-backend/internal/shared/auth"
)

// RoutedRepo keeps guest documents in an ephemeral repo and everyone else's
// in the primary one. Guest records must never reach durable storage.
type RoutedRepo struct {
	Primary Repo
	Guest   Repo
}

func (r *RoutedRepo) pick(userID string) Repo {
	if auth.IsGuestID(userID) {
		return r.Guest
	}
	return r.Primary
}

func (r *RoutedRepo) Create(ctx context.Context, doc Document) error {
	return r.pick(doc.UserID).Create(ctx, doc)
}

func (r *RoutedRepo) GetByID(ctx context.Context, userID, docID string) (Document, error) {
	return r.pick(userID).GetByID(ctx, userID, docID)
}

func (r *RoutedRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Document, error) {
	return r.pick(userID).ListByUser(ctx, userID, filter)
}

func (r *RoutedRepo) Update(ctx context.Context, userID, docID string, upd Update, now time.Time) (Document, error) {
	return r.pick(userID).Update(ctx, userID, docID, upd, now)
}

func (r *RoutedRepo) Delete(ctx context.Context, userID, docID string) error {
	return r.pick(userID).Delete(ctx, userID, docID)
}

func (r *RoutedRepo) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	return r.pick(userID).CountActiveByUser(ctx, userID)
}

func (r *RoutedRepo) CategoryCountsByUser(ctx context.Context, userID string) (map[Category]int, error) {
	return r.pick(userID).CategoryCountsByUser(ctx, userID)
}

var _ Repo = (*RoutedRepo)(nil)

package activity

import (
	"context"

	"vault-backend/internal/shared/auth"
)

// RoutedRepo keeps guest activity in an ephemeral repo and everyone else's
// in the primary one.
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

func (r *RoutedRepo) Create(ctx context.Context, entry Entry) error {
	return r.pick(entry.UserID).Create(ctx, entry)
}

func (r *RoutedRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	return r.pick(userID).ListByUser(ctx, userID, limit)
}

var _ Repo = (*RoutedRepo)(nil)

package quota

import (
	"context"

	"vault-backend/internal/shared/auth"
)

// RoutedStore sends guest identities to an ephemeral store and everyone else
// to the primary one. Guest accounting must never touch durable storage.
type RoutedStore struct {
	Primary Store
	Guest   Store
}

func (s *RoutedStore) pick(userID string) Store {
	if auth.IsGuestID(userID) {
		return s.Guest
	}
	return s.Primary
}

func (s *RoutedStore) Usage(ctx context.Context, userID string) (Usage, error) {
	return s.pick(userID).Usage(ctx, userID)
}

func (s *RoutedStore) Add(ctx context.Context, userID string, delta int64) (int64, error) {
	return s.pick(userID).Add(ctx, userID, delta)
}

func (s *RoutedStore) Release(ctx context.Context, userID string, bytes int64) error {
	return s.pick(userID).Release(ctx, userID, bytes)
}

var _ Store = (*RoutedStore)(nil)

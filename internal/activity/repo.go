package activity

import "context"

// Repo persists activity entries.
type Repo interface {
	Create(ctx context.Context, entry Entry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

package activity

import (
	"context"
	"sync"
)

// MemoryRepo keeps entries in memory, newest first. Used for guest sessions
// and database-less dev mode.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: make(map[string][]Entry)}
}

func (r *MemoryRepo) Create(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Prepend so reads come back newest first without sorting.
	r.entries[entry.UserID] = append([]Entry{entry}, r.entries[entry.UserID]...)
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.entries[userID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]Entry, len(list))
	copy(out, list)
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)

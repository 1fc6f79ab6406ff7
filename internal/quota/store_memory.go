package quota

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory ledger store. It backs guest sessions and
// database-less dev mode; entries are created on first touch with the
// configured default limit.
type MemoryStore struct {
	mu           sync.Mutex
	used         map[string]int64
	defaultLimit int64
}

// NewMemoryStore constructs a MemoryStore with the given default limit.
func NewMemoryStore(defaultLimit int64) *MemoryStore {
	return &MemoryStore{
		used:         make(map[string]int64),
		defaultLimit: defaultLimit,
	}
}

func (s *MemoryStore) Usage(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Usage{UsedBytes: s.used[userID], LimitBytes: s.defaultLimit}, nil
}

func (s *MemoryStore) Add(ctx context.Context, userID string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used[userID] += delta
	return s.used[userID], nil
}

func (s *MemoryStore) Release(ctx context.Context, userID string, bytes int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.used[userID] - bytes
	if next < 0 {
		next = 0
	}
	s.used[userID] = next
	return nil
}

var _ Store = (*MemoryStore)(nil)

package quota

import (
	"context"
	"fmt"
)

// Usage is a point-in-time snapshot of a user's storage accounting.
type Usage struct {
	UsedBytes  int64 `json:"used"`
	LimitBytes int64 `json:"limit"`
}

// ExceededError reports a rejected reservation, carrying current usage so
// handlers can include it in the client-facing message.
type ExceededError struct {
	Used      int64
	Limit     int64
	Requested int64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("storage limit exceeded: used %d of %d bytes, requested %d more", e.Used, e.Limit, e.Requested)
}

// Store is the durable side of the ledger. Add must be atomic against the
// underlying storage (single UPDATE with arithmetic, or equivalent), not a
// read-then-write, so concurrent commits never lose bytes.
type Store interface {
	Usage(ctx context.Context, userID string) (Usage, error)
	Add(ctx context.Context, userID string, delta int64) (int64, error)
	Release(ctx context.Context, userID string, bytes int64) error
}

// Ledger tracks per-user bytes-used against a bytes-limit.
//
// Check reads a point-in-time snapshot and Commit performs an atomic add.
// Two concurrent uploads can both pass Check and transiently exceed the
// limit; the committed counter always converges to the true sum. This
// tolerance is accepted rather than serializing uploads per user.
type Ledger struct {
	store Store
}

// NewLedger constructs a Ledger over the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Usage returns the user's current usage snapshot.
func (l *Ledger) Usage(ctx context.Context, userID string) (Usage, error) {
	return l.store.Usage(ctx, userID)
}

// Check verifies that additional bytes fit under the user's limit. It does
// not reserve anything; callers follow up with Commit once the bytes are
// indexed.
func (l *Ledger) Check(ctx context.Context, userID string, additional int64) error {
	u, err := l.store.Usage(ctx, userID)
	if err != nil {
		return err
	}
	if additional <= 0 {
		return nil
	}
	if u.UsedBytes+additional > u.LimitBytes {
		return &ExceededError{Used: u.UsedBytes, Limit: u.LimitBytes, Requested: additional}
	}
	return nil
}

// Commit atomically adds bytes to the user's counter and returns the new total.
func (l *Ledger) Commit(ctx context.Context, userID string, bytes int64) (int64, error) {
	if bytes <= 0 {
		u, err := l.store.Usage(ctx, userID)
		return u.UsedBytes, err
	}
	return l.store.Add(ctx, userID, bytes)
}

// Release subtracts bytes on delete, flooring at zero so drifted bookkeeping
// can never push the counter negative.
func (l *Ledger) Release(ctx context.Context, userID string, bytes int64) error {
	if bytes <= 0 {
		return nil
	}
	return l.store.Release(ctx, userID, bytes)
}

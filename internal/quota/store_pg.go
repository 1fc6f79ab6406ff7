package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGStore keeps the ledger in the users table, alongside the rest of the
// user record, so a document row and its accounting live in one database.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Usage(ctx context.Context, userID string) (Usage, error) {
	const query = `
SELECT storage_used, storage_limit FROM users WHERE id = $1`
	var u Usage
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&u.UsedBytes, &u.LimitBytes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Usage{}, fmt.Errorf("quota: unknown user %s", userID)
		}
		return Usage{}, err
	}
	return u, nil
}

// Add is a single UPDATE with in-database arithmetic, so concurrent commits
// serialize on the row and the counter never loses an increment.
func (s *PGStore) Add(ctx context.Context, userID string, delta int64) (int64, error) {
	const query = `
UPDATE users SET storage_used = storage_used + $1, updated_at = now()
WHERE id = $2
RETURNING storage_used`
	var newUsed int64
	err := s.DB.QueryRowContext(ctx, query, delta, userID).Scan(&newUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("quota: unknown user %s", userID)
		}
		return 0, err
	}
	return newUsed, nil
}

func (s *PGStore) Release(ctx context.Context, userID string, bytes int64) error {
	const query = `
UPDATE users SET storage_used = GREATEST(storage_used - $1, 0), updated_at = now()
WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, bytes, userID)
	return err
}

var _ Store = (*PGStore)(nil)

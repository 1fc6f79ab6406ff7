package activity

import (
	"context"
	"database/sql"
)

// PGRepo stores activity entries in Postgres. The activities table has no
// foreign key to documents, so snapshot rows survive document deletion.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, entry Entry) error {
	const query = `
INSERT INTO activities (id, user_id, action, document_id, document_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	docID := sql.NullString{String: entry.DocumentID, Valid: entry.DocumentID != ""}
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID, entry.UserID, string(entry.Action), docID, entry.DocumentName, entry.CreatedAt)
	return err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	const query = `
SELECT id, user_id, action, document_id, document_name, created_at
FROM activities
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var docID sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &docID, &e.DocumentName, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.DocumentID = docID.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

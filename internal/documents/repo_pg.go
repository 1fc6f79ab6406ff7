package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PGRepo stores document records in Postgres. Tags are kept as a JSONB
// array; metadata fields map to nullable columns.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `
id, user_id, name, doc_type, category, file_type, size_bytes, tags,
issuer, expiry_date, notes, document_number,
thumbnail_url, file_url, storage_provider, storage_key, resource_kind,
is_archived, is_favorite, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	tags, err := marshalTags(doc.Tags)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Name, string(doc.Type), string(doc.Category),
		string(doc.FileType), doc.SizeBytes, tags,
		nullString(doc.Metadata.Issuer), nullTime(doc.Metadata.ExpiryDate),
		nullString(doc.Metadata.Notes), nullString(doc.Metadata.DocumentNumber),
		nullString(doc.ThumbnailURL), doc.FileURL, doc.StorageProvider,
		doc.StorageKey, doc.ResourceKind,
		doc.IsArchived, doc.IsFavorite, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, docID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1 AND user_id = $2`
	row := r.DB.QueryRowContext(ctx, query, docID, userID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1 AND is_archived = $2`
	args := []any{userID, filter.Archived}

	if filter.Category != "" {
		args = append(args, string(filter.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.FavoriteOnly {
		query += " AND is_favorite = TRUE"
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		query += fmt.Sprintf(
			" AND (name ILIKE $%d OR issuer ILIKE $%d OR notes ILIKE $%d"+
				" OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS tag WHERE tag ILIKE $%d))",
			n, n, n, n)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, userID, docID string, upd Update, now time.Time) (Document, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Category != nil {
		add("category", string(*upd.Category))
	}
	if upd.Tags != nil {
		tags, err := marshalTags(*upd.Tags)
		if err != nil {
			return Document{}, err
		}
		add("tags", tags)
	}
	if upd.Metadata != nil {
		add("issuer", nullString(upd.Metadata.Issuer))
		add("expiry_date", nullTime(upd.Metadata.ExpiryDate))
		add("notes", nullString(upd.Metadata.Notes))
		add("document_number", nullString(upd.Metadata.DocumentNumber))
	}
	if upd.IsArchived != nil {
		add("is_archived", *upd.IsArchived)
	}
	if upd.IsFavorite != nil {
		add("is_favorite", *upd.IsFavorite)
	}
	add("updated_at", now)

	args = append(args, docID, userID)
	query := fmt.Sprintf(`
UPDATE documents SET %s
WHERE id = $%d AND user_id = $%d
RETURNING `+documentColumns, strings.Join(sets, ", "), len(args)-1, len(args))

	row := r.DB.QueryRowContext(ctx, query, args...)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, docID string) error {
	const query = `DELETE FROM documents WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, docID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM documents WHERE user_id = $1 AND is_archived = FALSE`
	var count int
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *PGRepo) CategoryCountsByUser(ctx context.Context, userID string) (map[Category]int, error) {
	const query = `
SELECT category, COUNT(*)
FROM documents
WHERE user_id = $1 AND is_archived = FALSE
GROUP BY category`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Category]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[Category(category)] = n
	}
	return counts, rows.Err()
}

// escapeLike neutralizes LIKE metacharacters so a search term matches
// literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var tags []byte
	var issuer, notes, docNumber, thumbnail sql.NullString
	var expiry sql.NullTime
	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.Name, &doc.Type, &doc.Category,
		&doc.FileType, &doc.SizeBytes, &tags,
		&issuer, &expiry, &notes, &docNumber,
		&thumbnail, &doc.FileURL, &doc.StorageProvider, &doc.StorageKey, &doc.ResourceKind,
		&doc.IsArchived, &doc.IsFavorite, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	doc.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &doc.Tags); err != nil {
			return Document{}, fmt.Errorf("decode tags for %s: %w", doc.ID, err)
		}
	}
	doc.Metadata.Issuer = issuer.String
	doc.Metadata.Notes = notes.String
	doc.Metadata.DocumentNumber = docNumber.String
	doc.ThumbnailURL = thumbnail.String
	if expiry.Valid {
		t := expiry.Time
		doc.Metadata.ExpiryDate = &t
	}
	return doc, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)

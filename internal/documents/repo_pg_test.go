package documents

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func documentRow(id, userID string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "doc_type", "category", "file_type",
		"size_bytes", "tags", "issuer", "expiry_date", "notes",
		"document_number", "thumbnail_url", "file_url", "storage_provider",
		"storage_key", "resource_kind", "is_archived", "is_favorite",
		"created_at", "updated_at",
	}).AddRow(
		id, userID, "passport", "pdf", "identity", "pdf",
		int64(2048), []byte(`["travel","id"]`), "State Dept", nil, nil,
		nil, nil, "https://cdn.example.com/a.pdf", "s3",
		"users/abc/a.pdf", "raw", false, false,
		now, now,
	)
}

func TestPGRepoGetByIDScansTagsAndMetadata(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM documents\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs("doc-1", "user-1").
		WillReturnRows(documentRow("doc-1", "user-1"))

	repo := &PGRepo{DB: db}
	doc, err := repo.GetByID(context.Background(), "user-1", "doc-1")
	require.NoError(t, err)
	require.Equal(t, []string{"travel", "id"}, doc.Tags)
	require.Equal(t, "State Dept", doc.Metadata.Issuer)
	require.Nil(t, doc.Metadata.ExpiryDate)
	require.Equal(t, "s3", doc.StorageProvider)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM documents`).
		WithArgs("doc-1", "user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	_, err = repo.GetByID(context.Background(), "user-2", "doc-1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoDeleteNotFoundWhenNoRows(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM documents WHERE id = \$1 AND user_id = \$2`).
		WithArgs("doc-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	err = repo.Delete(context.Background(), "user-2", "doc-1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoListBuildsSearchClause(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`AND \(name ILIKE \$3 OR issuer ILIKE \$3 OR notes ILIKE \$3 OR EXISTS \(SELECT 1 FROM jsonb_array_elements_text\(tags\) AS tag WHERE tag ILIKE \$3\)\)`).
		WithArgs("user-1", false, "%tax%").
		WillReturnRows(documentRow("doc-1", "user-1"))

	repo := &PGRepo{DB: db}
	docs, err := repo.ListByUser(context.Background(), "user-1", ListFilter{Search: "tax"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoListEscapesSearchMetacharacters(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	// "100%_x" must match literally, not as a wildcard pattern.
	mock.ExpectQuery(`name ILIKE \$3`).
		WithArgs("user-1", false, `%100\%\_x%`).
		WillReturnRows(documentRow("doc-1", "user-1"))

	repo := &PGRepo{DB: db}
	docs, err := repo.ListByUser(context.Background(), "user-1", ListFilter{Search: "100%_x"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

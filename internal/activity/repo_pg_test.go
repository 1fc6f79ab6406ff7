package activity

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPGRepoCreateSendsNullForMissingDocumentID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO activities`).
		WithArgs("act-1", "user-1", "delete", nil, "old-lease.pdf", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Entry{
		ID:           "act-1",
		UserID:       "user-1",
		Action:       ActionDelete,
		DocumentName: "old-lease.pdf",
		CreatedAt:    now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoListScansNullDocumentID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM activities`).
		WithArgs("user-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "action", "document_id", "document_name", "created_at",
		}).AddRow("act-1", "user-1", "delete", nil, "old-lease.pdf", now))

	repo := &PGRepo{DB: db}
	entries, err := repo.ListByUser(context.Background(), "user-1", 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Empty(t, entries[0].DocumentID)
	require.Equal(t, "old-lease.pdf", entries[0].DocumentName)
	require.NoError(t, mock.ExpectationsWereMet())
}

package quota

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreAddReturnsNewTotal(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE users SET storage_used = storage_used \+ \$1`).
		WithArgs(int64(2048), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"storage_used"}).AddRow(int64(4096)))

	store := &PGStore{DB: db}
	newUsed, err := store.Add(context.Background(), "user-1", 2048)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if newUsed != 4096 {
		t.Fatalf("expected 4096, got %d", newUsed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreReleaseFloorsInSQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET storage_used = GREATEST\(storage_used - \$1, 0\)`).
		WithArgs(int64(512), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := &PGStore{DB: db}
	if err := store.Release(context.Background(), "user-1", 512); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

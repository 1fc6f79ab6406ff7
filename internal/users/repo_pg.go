package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo stores user accounts in Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, name, email, password_hash, avatar, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, name, email, password_hash, avatar, storage_used, storage_limit, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, DEFAULT, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash,
		nullString(user.Avatar), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func (r *PGRepo) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate, now time.Time) (User, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Avatar != nil {
		add("avatar", nullString(*upd.Avatar))
	}
	add("updated_at", now)

	args = append(args, id)
	query := fmt.Sprintf(`
UPDATE users SET %s
WHERE id = $%d
RETURNING `+userColumns, strings.Join(sets, ", "), len(args))
	return r.scanOne(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	var avatar sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Avatar = avatar.String
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)

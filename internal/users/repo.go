package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// ProfileUpdate carries partial profile changes. Nil fields are left as-is.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
}

// Repo persists user accounts.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate, now time.Time) (User, error)
}

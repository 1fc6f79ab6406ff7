package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo keeps accounts in memory for database-less dev mode.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return ErrEmailTaken
	}
	r.byID[user.ID] = user
	r.byEmail[email] = user.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate, now time.Time) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Avatar != nil {
		user.Avatar = *upd.Avatar
	}
	user.UpdatedAt = now
	r.byID[id] = user
	return user, nil
}

var _ Repo = (*MemoryRepo)(nil)

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vault-backend/internal/quota"
	"vault-backend/internal/shared/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

const minPasswordLength = 6

// Service implements account registration, login and profile management.
type Service struct {
	repo      Repo
	ledger    *quota.Ledger
	jwtSecret []byte
}

func NewService(repo Repo, ledger *quota.Ledger, jwtSecret []byte) *Service {
	return &Service{repo: repo, ledger: ledger, jwtSecret: jwtSecret}
}

// Register creates an account and returns it with a signed session token.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return User{}, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return User{}, "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return User{}, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, "", err
	}

	token, err := auth.Sign(s.jwtSecret, user.ID, user.Email, user.Name)
	if err != nil {
		return User{}, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns the account with a session token.
// Unknown email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := auth.Sign(s.jwtSecret, user.ID, user.Email, user.Name)
	if err != nil {
		return User{}, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// Profile fetches the account for the given identity. Guest identities have
// no stored account; an ephemeral one is synthesized on the fly.
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	if auth.IsGuestID(userID) {
		return User{
			ID:      userID,
			Name:    "Guest",
			IsGuest: true,
		}, nil
	}
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile applies partial profile changes. Guests have nothing to
// update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (User, error) {
	if auth.IsGuestID(userID) {
		return User{}, fmt.Errorf("%w: guest profiles cannot be edited", ErrInvalidInput)
	}
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return User{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		upd.Name = &trimmed
	}
	return s.repo.UpdateProfile(ctx, userID, upd, time.Now().UTC())
}

// StorageUsage reports the identity's quota snapshot.
func (s *Service) StorageUsage(ctx context.Context, userID string) (quota.Usage, error) {
	return s.ledger.Usage(ctx, userID)
}

package app

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"quizmaster/internal/domain"
)

// UserRepository stores registered accounts keyed by username.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (domain.User, bool, error)
	Create(ctx context.Context, user domain.User) error
}

// AccountService handles registration, login, and the admin gate. Passwords
// are stored as plain SHA-256 digests for parity with the browser demo;
// treat this as a demo account store, not hardened credential storage.
type AccountService struct {
	users    UserRepository
	adminKey string
	now      func() time.Time
}

func NewAccountService(users UserRepository, adminKey string) *AccountService {
	return NewAccountServiceWithClock(users, adminKey, time.Now)
}

// NewAccountServiceWithClock is test-only for deterministic timestamps.
func NewAccountServiceWithClock(users UserRepository, adminKey string, now func() time.Time) *AccountService {
	return &AccountService{users: users, adminKey: adminKey, now: now}
}

// Register creates a new account. The username must be unused.
func (a *AccountService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	if _, ok, err := a.users.GetByUsername(ctx, username); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, domain.ErrUsernameTaken
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		PassHash:  hashPassword(password),
		CreatedAt: a.now(),
	}
	if err := a.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login checks username, email, and password against the stored account.
func (a *AccountService) Login(ctx context.Context, username, email, password string) (domain.User, error) {
	user, ok, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	if !ok || user.Email != email {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(user.PassHash), []byte(hashPassword(password))) != 1 {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// CheckAdminKey gates the admin bank operations behind the configured key.
func (a *AccountService) CheckAdminKey(key string) error {
	if a.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(a.adminKey)) != 1 {
		return domain.ErrAdminKeyRejected
	}
	return nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

// User is an account. Password holds whatever the configured PasswordScheme
// stored, which is the plaintext password under the default scheme.
type User struct {
	ID       int64
	Email    string
	Password string
	FullName string
}

// Session binds an opaque token to a user until ExpiresAt.
type Session struct {
	ID        int64
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

type CreateUserParams struct {
	Email    string
	Password string
	FullName string
}

type CreateSessionParams struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// Repository is the persistence contract for users and sessions.
//
// CreateUser returns ErrEmailTaken when the store rejects a duplicate email.
// Lookups return ErrUserNotFound or ErrSessionNotFound when no row matches.
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	GetSessionByToken(ctx context.Context, token string) (*Session, error)
	DeleteSessionsByToken(ctx context.Context, token string) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Noah170803/eventio/internal/domain/users"
)

// ErrUnauthorized is wrapped by every session validation failure.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrMissingToken    = fmt.Errorf("%w: missing session token", ErrUnauthorized)
	ErrInvalidSession  = fmt.Errorf("%w: invalid session", ErrUnauthorized)
	ErrSessionExpired  = fmt.Errorf("%w: session expired", ErrUnauthorized)
	ErrOrphanedSession = fmt.Errorf("%w: session user no longer exists", ErrUnauthorized)
	ErrMissingBearer   = errors.New("missing bearer token")
)

// SessionStore is the subset of users.Repository needed to resolve a token.
type SessionStore interface {
	GetSessionByToken(ctx context.Context, token string) (*users.Session, error)
	GetUserByID(ctx context.Context, id int64) (*users.User, error)
}

// SessionValidator resolves opaque session tokens to users. Expiry is
// re-checked on every call; nothing is cached.
type SessionValidator struct {
	store SessionStore
	now   func() time.Time
}

func NewSessionValidator(store SessionStore) *SessionValidator {
	return &SessionValidator{store: store, now: time.Now}
}

// WithClock returns a copy of v that reads the time from now.
func (v *SessionValidator) WithClock(now func() time.Time) *SessionValidator {
	cp := *v
	cp.now = now
	return &cp
}

// Authenticate returns the user owning token. All failures wrap
// ErrUnauthorized except storage errors, which are returned as-is.
func (v *SessionValidator) Authenticate(ctx context.Context, token string) (*users.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	session, err := v.store.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, users.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if !session.ExpiresAt.After(v.now()) {
		return nil, ErrSessionExpired
	}

	user, err := v.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrOrphanedSession
		}
		return nil, fmt.Errorf("lookup session user: %w", err)
	}
	return user, nil
}

// BearerToken extracts the token from an Authorization request header.
func BearerToken(r *http.Request) (string, error) {
	if r == nil {
		return "", ErrMissingBearer
	}
	return BearerTokenFromHeader(r.Header.Get("Authorization"))
}

func BearerTokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingBearer
	}
	return parts[1], nil
}

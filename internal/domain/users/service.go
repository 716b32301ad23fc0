package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Noah170803/eventio/internal/audit"
	"github.com/Noah170803/eventio/internal/validation"
	"github.com/rs/zerolog"
)

// Error types for user domain operations
var (
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports request fields that failed shape checks.
type ValidationError = validation.Error

const (
	// DefaultSessionTTL is how long a login session stays valid
	DefaultSessionTTL = 7 * 24 * time.Hour

	// tokenBytes is the entropy of a session token before hex encoding
	tokenBytes = 32
)

// Service handles signup, login and logout.
type Service struct {
	repo       Repository
	passwords  PasswordScheme
	validator  *validation.Validator
	audit      *audit.Logger
	sessionTTL time.Duration
	now        func() time.Time
	newToken   func() (string, error)
	logger     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPasswordScheme replaces the default plaintext scheme.
func WithPasswordScheme(scheme PasswordScheme) Option {
	return func(s *Service) {
		if scheme != nil {
			s.passwords = scheme
		}
	}
}

// WithSessionTTL sets the lifetime of new sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithAuditLogger records signups, logins and logouts.
func WithAuditLogger(logger *audit.Logger) Option {
	return func(s *Service) {
		s.audit = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTokenGenerator overrides the random session token source.
func WithTokenGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = fn
	}
}

// NewService creates a new user service instance
func NewService(repo Repository, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		passwords:  PlaintextPasswords{},
		validator:  validation.New(),
		audit:      audit.Nop(),
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		newToken:   GenerateSessionToken,
		logger:     logger.With().Str("component", "users").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PasswordScheme returns the scheme in use.
func (s *Service) PasswordScheme() PasswordScheme {
	return s.passwords
}

type SignupParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	FullName string `json:"fullName" validate:"required"`
}

type LoginParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Signup registers a new user. Emails are compared exactly.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*User, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByEmail(ctx, params.Email)
	switch {
	case err == nil && existing != nil:
		s.audit.LogFailure(ctx, "auth.signup", params.Email, map[string]string{"reason": "email_taken"})
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	stored, err := s.passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		Email:    params.Email,
		Password: stored,
		FullName: params.FullName,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.LogSuccess(ctx, "auth.signup", user.Email, "user", strconv.FormatInt(user.ID, 10), nil)
	s.logger.Debug().Int64("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// Login checks credentials and opens a new session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.audit.LogFailure(ctx, "auth.login", params.Email, map[string]string{"reason": "unknown_email"})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.passwords.Matches(user.Password, params.Password) {
		s.audit.LogFailure(ctx, "auth.login", params.Email, map[string]string{"reason": "password_mismatch"})
		return nil, ErrInvalidCredentials
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session, err := s.repo.CreateSession(ctx, CreateSessionParams{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL).UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.audit.LogSuccess(ctx, "auth.login", user.Email, "session", strconv.FormatInt(session.ID, 10), nil)
	return &LoginResult{
		User:      user,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout deletes every session carrying token. An empty token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	deleted, err := s.repo.DeleteSessionsByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted > 0 {
		s.audit.LogSuccess(ctx, "auth.logout", "", "session", "", nil)
	}
	return nil
}

// PurgeExpiredSessions removes sessions that are no longer valid and reports
// how many were deleted. Nothing calls it on a schedule.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpiredSessions(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	s.logger.Info().Int64("deleted", deleted).Msg("purged expired sessions")
	return deleted, nil
}

// GenerateSessionToken returns 32 random bytes, hex encoded (64 characters).
func GenerateSessionToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func (r *UserRepository) CreateUser(ctx context.Context, params users.CreateUserParams) (_ *users.User, err error) {
	defer func(start time.Time) { observe("create_user", start, err) }(time.Now())

	user := users.User{Email: params.Email, Password: params.Password, FullName: params.FullName}
	err = r.pool.QueryRow(ctx, `
INSERT INTO users (email, password, full_name)
VALUES ($1, $2, $3)
RETURNING id
`, params.Email, params.Password, params.FullName).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, users.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (_ *users.User, err error) {
	defer func(start time.Time) { observe("get_user_by_id", start, err) }(time.Now())

	row := r.pool.QueryRow(ctx, `SELECT id, email, password, full_name FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (_ *users.User, err error) {
	defer func(start time.Time) { observe("get_user_by_email", start, err) }(time.Now())

	row := r.pool.QueryRow(ctx, `SELECT id, email, password, full_name FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*users.User, error) {
	var user users.User
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.FullName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) CreateSession(ctx context.Context, params users.CreateSessionParams) (_ *users.Session, err error) {
	defer func(start time.Time) { observe("create_session", start, err) }(time.Now())

	session := users.Session{Token: params.Token, UserID: params.UserID}
	err = r.pool.QueryRow(ctx, `
INSERT INTO sessions (token, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING id, expires_at
`, params.Token, params.UserID, params.ExpiresAt).Scan(&session.ID, &session.ExpiresAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	session.ExpiresAt = session.ExpiresAt.UTC()
	return &session, nil
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, token string) (_ *users.Session, err error) {
	defer func(start time.Time) { observe("get_session_by_token", start, err) }(time.Now())

	var session users.Session
	err = r.pool.QueryRow(ctx, `
SELECT id, token, user_id, expires_at
  FROM sessions
 WHERE token = $1
 ORDER BY id
 LIMIT 1
`, token).Scan(&session.ID, &session.Token, &session.UserID, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	session.ExpiresAt = session.ExpiresAt.UTC()
	return &session, nil
}

func (r *UserRepository) DeleteSessionsByToken(ctx context.Context, token string) (_ int64, err error) {
	defer func(start time.Time) { observe("delete_sessions_by_token", start, err) }(time.Now())

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (_ int64, err error) {
	defer func(start time.Time) { observe("delete_expired_sessions", start, err) }(time.Now())

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

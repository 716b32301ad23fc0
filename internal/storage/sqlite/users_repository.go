package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Noah170803/eventio/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, params users.CreateUserParams) (_ *users.User, err error) {
	defer func(start time.Time) { observe("create_user", start, err) }(time.Now())

	user := users.User{Email: params.Email, Password: params.Password, FullName: params.FullName}
	err = r.db.QueryRowContext(ctx, `
INSERT INTO users (email, password, full_name)
VALUES (?, ?, ?)
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

	return scanUser(r.db.QueryRowContext(ctx, `SELECT id, email, password, full_name FROM users WHERE id = ?`, id))
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (_ *users.User, err error) {
	defer func(start time.Time) { observe("get_user_by_email", start, err) }(time.Now())

	return scanUser(r.db.QueryRowContext(ctx, `SELECT id, email, password, full_name FROM users WHERE email = ?`, email))
}

func scanUser(row *sql.Row) (*users.User, error) {
	var user users.User
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.FullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) CreateSession(ctx context.Context, params users.CreateSessionParams) (_ *users.Session, err error) {
	defer func(start time.Time) { observe("create_session", start, err) }(time.Now())

	session := users.Session{
		Token:     params.Token,
		UserID:    params.UserID,
		ExpiresAt: fromMillis(toMillis(params.ExpiresAt)),
	}
	err = r.db.QueryRowContext(ctx, `
INSERT INTO sessions (token, user_id, expires_at)
VALUES (?, ?, ?)
RETURNING id
`, params.Token, params.UserID, toMillis(params.ExpiresAt)).Scan(&session.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &session, nil
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, token string) (_ *users.Session, err error) {
	defer func(start time.Time) { observe("get_session_by_token", start, err) }(time.Now())

	var (
		session   users.Session
		expiresAt int64
	)
	err = r.db.QueryRowContext(ctx, `
SELECT id, token, user_id, expires_at
  FROM sessions
 WHERE token = ?
 ORDER BY id
 LIMIT 1
`, token).Scan(&session.ID, &session.Token, &session.UserID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	session.ExpiresAt = fromMillis(expiresAt)
	return &session, nil
}

func (r *UserRepository) DeleteSessionsByToken(ctx context.Context, token string) (_ int64, err error) {
	defer func(start time.Time) { observe("delete_sessions_by_token", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return res.RowsAffected()
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (_ int64, err error) {
	defer func(start time.Time) { observe("delete_expired_sessions", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

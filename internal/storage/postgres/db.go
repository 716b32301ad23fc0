package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// OpenPool connects to databaseURL and verifies the connection.
func OpenPool(ctx context.Context, databaseURL string, maxConns int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

// observe records query metrics. Lookups that miss and constraint conflicts
// are expected outcomes, not database errors.
func observe(operation string, start time.Time, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows),
		errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, users.ErrSessionNotFound),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, events.ErrNotFound),
		errors.Is(err, events.ErrNotParticipating),
		errors.Is(err, events.ErrAlreadyParticipating):
		err = nil
	}
	metrics.RecordQuery("postgres", operation, start, err)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/metrics"
)

// Repository implements storage.Repository on a single SQLite file.
type Repository struct {
	db *sql.DB

	users  *UserRepository
	events *EventRepository
}

func NewRepository(db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	return &Repository{
		db:     db,
		users:  &UserRepository{db: db},
		events: &EventRepository{db: db},
	}, nil
}

func (r *Repository) Users() users.Repository {
	return r.users
}

func (r *Repository) Events() events.Repository {
	return r.events
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// MigrationVersion reads the golang-migrate bookkeeping row on the open
// handle. A missing row reports version 0.
func (r *Repository) MigrationVersion(ctx context.Context) (uint, bool, error) {
	var version int64
	var dirty bool
	err := r.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query migration version: %w", err)
	}
	return uint(version), dirty, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// DB exposes the underlying handle for tests and maintenance commands.
func (r *Repository) DB() *sql.DB {
	return r.db
}

func (r *Repository) PoolStats() metrics.PoolStats {
	stat := r.db.Stats()
	return metrics.PoolStats{
		Open:    stat.OpenConnections,
		InUse:   stat.InUse,
		Idle:    stat.Idle,
		MaxOpen: stat.MaxOpenConnections,
	}
}

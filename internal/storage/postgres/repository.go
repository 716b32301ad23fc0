package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements storage.Repository with a PostgreSQL backend
type Repository struct {
	pool *pgxpool.Pool

	users  *UserRepository
	events *EventRepository
}

// NewRepository creates a new PostgreSQL-backed repository
func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}

	return &Repository{
		pool:   pool,
		users:  &UserRepository{pool: pool},
		events: &EventRepository{pool: pool},
	}, nil
}

// Users returns the users and sessions repository
func (r *Repository) Users() users.Repository {
	return r.users
}

// Events returns the events and participants repository
func (r *Repository) Events() events.Repository {
	return r.events
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// MigrationVersion reads the golang-migrate bookkeeping row over the pool.
// A missing row reports version 0.
func (r *Repository) MigrationVersion(ctx context.Context) (uint, bool, error) {
	var version int64
	var dirty bool
	err := r.pool.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query migration version: %w", err)
	}
	return uint(version), dirty, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// Pool exposes the underlying pool for health checks and metrics.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *Repository) PoolStats() metrics.PoolStats {
	stat := r.pool.Stat()
	return metrics.PoolStats{
		Open:    int(stat.TotalConns()),
		InUse:   int(stat.AcquiredConns()),
		Idle:    int(stat.IdleConns()),
		MaxOpen: int(stat.MaxConns()),
	}
}

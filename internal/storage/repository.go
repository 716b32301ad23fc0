package storage

import (
	"context"

	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
)

// Repository groups data access by domain.
type Repository interface {
	Users() users.Repository
	Events() events.Repository

	Ping(ctx context.Context) error
	// MigrationVersion reports the applied schema version and dirty flag
	// without modifying the schema.
	MigrationVersion(ctx context.Context) (uint, bool, error)
	Close() error
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Noah170803/eventio/internal/storage/postgres"
	"github.com/Noah170803/eventio/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// Backend identifies the database engine behind a DATABASE_URL.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

var (
	_ Repository = (*postgres.Repository)(nil)
	_ Repository = (*sqlite.Repository)(nil)
)

// BackendFor selects the backend from the URL scheme.
func BackendFor(databaseURL string) (Backend, error) {
	lower := strings.ToLower(strings.TrimSpace(databaseURL))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"):
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", redact(databaseURL))
	}
}

// Options controls how Open connects.
type Options struct {
	MaxConnections int
	AutoMigrate    bool
}

// Open connects to databaseURL, optionally migrating the schema first.
func Open(ctx context.Context, databaseURL string, opts Options, logger zerolog.Logger) (Repository, error) {
	backend, err := BackendFor(databaseURL)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Str("component", "storage").Str("backend", string(backend)).Logger()

	if opts.AutoMigrate {
		if err := MigrateUp(ctx, databaseURL); err != nil {
			return nil, err
		}
		logger.Info().Msg("database migrations applied")
	}

	switch backend {
	case BackendPostgres:
		pool, err := postgres.OpenPool(ctx, databaseURL, opts.MaxConnections)
		if err != nil {
			return nil, err
		}
		repo, err := postgres.NewRepository(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info().Int("max_connections", opts.MaxConnections).Msg("connected to database")
		return repo, nil
	default:
		path, err := sqlite.PathFromURL(databaseURL)
		if err != nil {
			return nil, err
		}
		db, err := sqlite.OpenDB(ctx, path)
		if err != nil {
			return nil, err
		}
		repo, err := sqlite.NewRepository(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info().Str("path", path).Msg("connected to database")
		return repo, nil
	}
}

// MigrateUp applies all pending schema migrations.
func MigrateUp(ctx context.Context, databaseURL string) error {
	backend, err := BackendFor(databaseURL)
	if err != nil {
		return err
	}
	if backend == BackendPostgres {
		return postgres.MigrateUp(databaseURL)
	}
	path, err := sqlite.PathFromURL(databaseURL)
	if err != nil {
		return err
	}
	return sqlite.MigrateUp(ctx, path)
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(ctx context.Context, databaseURL string, steps int) error {
	backend, err := BackendFor(databaseURL)
	if err != nil {
		return err
	}
	if backend == BackendPostgres {
		return postgres.MigrateDown(databaseURL, steps)
	}
	path, err := sqlite.PathFromURL(databaseURL)
	if err != nil {
		return err
	}
	return sqlite.MigrateDown(ctx, path, steps)
}

// MigrationVersion reports the applied schema version and dirty flag.
func MigrationVersion(ctx context.Context, databaseURL string) (uint, bool, error) {
	backend, err := BackendFor(databaseURL)
	if err != nil {
		return 0, false, err
	}
	if backend == BackendPostgres {
		return postgres.MigrationVersion(databaseURL)
	}
	path, err := sqlite.PathFromURL(databaseURL)
	if err != nil {
		return 0, false, err
	}
	return sqlite.MigrationVersion(ctx, path)
}

// redact hides credentials in a database URL for error messages.
func redact(databaseURL string) string {
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return databaseURL
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***@" + rest[at+1:]
	}
	return databaseURL
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/metrics"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const driverName = "sqlite"

// PathFromURL extracts the database file path from a sqlite:// or file: URL.
func PathFromURL(databaseURL string) (string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if path == "" {
			return "", fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		return path, nil
	case strings.HasPrefix(databaseURL, "file:"):
		path := strings.TrimPrefix(databaseURL, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if path == "" {
			return "", fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		return path, nil
	default:
		return "", fmt.Errorf("not a sqlite url: %q", databaseURL)
	}
}

// DSN builds a modernc.org/sqlite data source name with foreign keys enabled
// and a busy timeout so concurrent writers wait instead of failing.
func DSN(path string) string {
	return filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

// OpenDB opens the database file at path and verifies the connection.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func sqliteCode(err error) int {
	var sqlErr *msqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code()
	}
	return 0
}

func isUniqueViolation(err error) bool {
	code := sqliteCode(err)
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		(err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed"))
}

func isForeignKeyViolation(err error) bool {
	return sqliteCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
		(err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed"))
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// observe records query metrics. Lookups that miss and constraint conflicts
// are expected outcomes, not database errors.
func observe(operation string, start time.Time, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows),
		errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, users.ErrSessionNotFound),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, events.ErrNotFound),
		errors.Is(err, events.ErrNotParticipating),
		errors.Is(err, events.ErrAlreadyParticipating):
		err = nil
	}
	metrics.RecordQuery("sqlite", operation, start, err)
}

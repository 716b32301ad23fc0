package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAndPurgeCommands(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("DATABASE_AUTO_MIGRATE", "false")
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 1 (dirty: false)")

	out, err = execute(t, "sessions", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "purged 0 expired sessions")

	out, err = execute(t, "migrate", "down", "--steps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 0")

	_, err = execute(t, "migrate", "down", "--steps", "0")
	assert.Error(t, err)
}

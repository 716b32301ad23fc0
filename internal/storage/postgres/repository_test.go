package postgres

import (
	"context"
	"testing"

	"github.com/Noah170803/eventio/internal/storage/storagetest"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
)

func TestConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Repository {
		pool, _ := setupPostgres(t)
		repo, err := NewRepository(pool)
		require.NoError(t, err)
		return repo
	})
}

func TestMigrationVersion(t *testing.T) {
	_, dbURL := setupPostgres(t)

	version, dirty, err := MigrationVersion(dbURL)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)
}

func TestRepositoryMigrationVersion(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	version, dirty, err := repo.MigrationVersion(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)
}

func TestRepositoryPingAndStats(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	require.NoError(t, repo.Ping(context.Background()))
	require.Equal(t, 10, repo.PoolStats().MaxOpen)
}

func TestNewRepositoryRequiresPool(t *testing.T) {
	_, err := NewRepository(nil)
	require.Error(t, err)
}

func TestConstraintClassification(t *testing.T) {
	require.False(t, isUniqueViolation(nil))
	require.False(t, isForeignKeyViolation(context.Canceled))
}

func TestConnectionStringUsesMappedPort(t *testing.T) {
	_, dbURL := setupPostgres(t)

	port, err := sharedContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	require.NoError(t, err)
	require.Contains(t, dbURL, ":"+port.Port()+"/")
}

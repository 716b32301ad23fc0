package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBackendFor(t *testing.T) {
	tests := []struct {
		url     string
		want    Backend
		wantErr bool
	}{
		{url: "postgres://u:p@localhost:5432/db", want: BackendPostgres},
		{url: "postgresql://localhost/db", want: BackendPostgres},
		{url: "sqlite://eventio.db", want: BackendSQLite},
		{url: "file:eventio.db", want: BackendSQLite},
		{url: "mysql://u:p@localhost/db", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := BackendFor(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBackendForRedactsCredentials(t *testing.T) {
	_, err := BackendFor("mysql://root:hunter2@db/app")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "hunter2")
}

func TestOpenSQLiteWithAutoMigrate(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "eventio.db")

	repo, err := Open(ctx, url, Options{AutoMigrate: true}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.Ping(ctx))
	user, err := repo.Users().CreateUser(ctx, users.CreateUserParams{Email: "a@x.com", Password: "secret1", FullName: "A"})
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	version, dirty, err := MigrationVersion(ctx, url)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)
}

func TestOpenWithoutMigrationsFailsOnQuery(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "eventio.db")

	repo, err := Open(ctx, url, Options{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	_, err = repo.Events().List(ctx)
	require.Error(t, err)

	require.NoError(t, MigrateUp(ctx, url))
	list, err := repo.Events().List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

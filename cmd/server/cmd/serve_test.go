package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/Noah170803/eventio/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommandHelp(t *testing.T) {
	out, err := execute(t, "serve", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--host")
	assert.Contains(t, out, "--port")
}

func TestServeRunsUntilCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.Environment = "test"
	cfg.CORS.AllowAllOrigins = true
	cfg.Database.URL = "sqlite://" + filepath.Join(t.TempDir(), "serve.db")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := fmt.Sprintf("http://%s", ln.Addr().String())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, zerolog.Nop(), ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/readyz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 25*time.Millisecond)

	resp, err := http.Get(base + "/api/events")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeFailsOnBadDatabaseURL(t *testing.T) {
	cfg := config.Default()
	cfg.Database.URL = "mysql://nope"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = serve(context.Background(), cfg, zerolog.Nop(), ln)
	assert.Error(t, err)
}

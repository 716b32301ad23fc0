package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Noah170803/eventio/internal/config"
	"github.com/Noah170803/eventio/internal/storage"
	"github.com/Noah170803/eventio/internal/storage/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodMux(t *testing.T) {
	mux := methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		http.MethodPost: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}),
	})

	tests := []struct {
		method      string
		status      int
		expectAllow string
	}{
		{http.MethodGet, http.StatusOK, ""},
		{http.MethodPost, http.StatusCreated, ""},
		{http.MethodPut, http.StatusMethodNotAllowed, "GET, POST"},
		{http.MethodPatch, http.StatusMethodNotAllowed, "GET, POST"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tt.method, "/test", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.expectAllow, w.Header().Get("Allow"))
		})
	}
}

func TestAllowedMethods(t *testing.T) {
	noop := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, "", allowedMethods(map[string]http.Handler{}))
	assert.Equal(t, "DELETE, GET", allowedMethods(map[string]http.Handler{
		http.MethodGet:    noop,
		http.MethodDelete: noop,
	}))
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.Environment = "test"
	cfg.CORS.AllowAllOrigins = true
	cfg.Database.URL = "sqlite://" + filepath.Join(t.TempDir(), "router.db")

	repo, err := storage.Open(context.Background(), cfg.Database.URL, storage.Options{AutoMigrate: true}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	handler, err := NewRouter(Deps{Config: cfg, Logger: zerolog.Nop(), Repo: repo, Version: "test"})
	require.NoError(t, err)
	return &testServer{t: t, handler: handler}
}

func (s *testServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestScenarioSignupLoginCreateParticipate(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "alice@example.com", "password": "hunter22", "fullName": "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := decode(t, rec)["user"].(map[string]any)["id"]

	rec = srv.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode(t, rec)["token"].(string)
	require.Len(t, token, 64)

	rec = srv.do(http.MethodPost, "/api/events", map[string]string{
		"title": "Meetup", "description": "Monthly", "date": "2026-03-10T19:00", "location": "Lyon", "token": token,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode(t, rec)["event"].(map[string]any)
	assert.Equal(t, userID, event["organizerId"])
	assert.Equal(t, "2026-03-10T19:00:00Z", event["date"])
	eventPath := fmt.Sprintf("/api/events/%v", event["id"])

	rec = srv.do(http.MethodGet, eventPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["participants"])

	rec = srv.do(http.MethodPost, eventPath+"/participate", map[string]string{"token": token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, eventPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	participants := decode(t, rec)["participants"].([]any)
	require.Len(t, participants, 1)
	assert.Equal(t, userID, participants[0].(map[string]any)["userId"])

	rec = srv.do(http.MethodPost, eventPath+"/participate", map[string]string{"token": token})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = srv.do(http.MethodDelete, eventPath, map[string]string{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, eventPath, nil).Code)
}

func TestRouterErrorsAndSurfaces(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/events/not-a-number", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = srv.do(http.MethodPut, "/api/events", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))

	rec = srv.do(http.MethodPost, "/api/events/1/participate", map[string]string{"token": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(http.MethodGet, "/api", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eventio API")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/readyz", nil).Code)

	rec = srv.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = srv.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eventio_http_requests_total")

	rec = srv.do(http.MethodGet, "/api/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.0.3", decode(t, rec)["openapi"])

	rec = srv.do(http.MethodGet, "/version", nil)
	assert.Equal(t, "test", decode(t, rec)["version"])

	rec = srv.do(http.MethodOptions, "/api/events", nil, "Origin", "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRequiresRepository(t *testing.T) {
	_, err := NewRouter(Deps{Config: config.Default(), Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestReadyzDoesNotCreateMigrationTable(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Environment = "test"
	path := filepath.Join(t.TempDir(), "fresh.db")
	cfg.Database.URL = "sqlite://" + path

	repo, err := storage.Open(ctx, cfg.Database.URL, storage.Options{AutoMigrate: false}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	handler, err := NewRouter(Deps{Config: cfg, Logger: zerolog.Nop(), Repo: repo, Version: "test"})
	require.NoError(t, err)
	srv := &testServer{t: t, handler: handler}

	rec := srv.do(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "migrations", decode(t, rec)["failed"])

	db, err := sqlite.OpenDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	var tables int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`).Scan(&tables))
	assert.Zero(t, tables)
}

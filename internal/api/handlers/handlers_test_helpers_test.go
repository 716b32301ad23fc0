package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Noah170803/eventio/internal/audit"
	"github.com/Noah170803/eventio/internal/auth"
	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	repo   storage.Repository
	auth   *AuthHandler
	events *EventsHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	url := "sqlite://" + filepath.Join(t.TempDir(), "handlers.db")
	repo, err := storage.Open(context.Background(), url, storage.Options{AutoMigrate: true}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	userService := users.NewService(repo.Users(), zerolog.Nop())
	validator := auth.NewSessionValidator(repo.Users())
	eventService := events.NewService(repo.Events(), validator, audit.Nop(), zerolog.Nop())

	return &testEnv{
		repo:   repo,
		auth:   NewAuthHandler(userService, "test", "session", false),
		events: NewEventsHandler(eventService, "test"),
	}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withID(req *http.Request, id string) *http.Request {
	req.SetPathValue("id", id)
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// signupAndLogin registers email and returns the user id and session token.
func (e *testEnv) signupAndLogin(t *testing.T, email string) (int64, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.auth.Signup(rec, jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": "secret123", "fullName": "Test User",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	e.auth.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": "secret123",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[loginResponse](t, rec)
	return body.User.ID, body.Token
}

func (e *testEnv) createEvent(t *testing.T, token, title string) eventJSON {
	t.Helper()
	rec := httptest.NewRecorder()
	e.events.Create(rec, jsonRequest(t, http.MethodPost, "/api/events", map[string]string{
		"title": title, "description": "d", "date": "2026-05-01T18:00:00Z", "location": "Paris", "token": token,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[eventResponse](t, rec).Event
}

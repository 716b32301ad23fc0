package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Noah170803/eventio/internal/api/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsListEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.events.List(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEventsCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.signupAndLogin(t, "org@example.com")

	created := env.createEvent(t, token, "Go meetup")
	assert.Equal(t, userID, created.OrganizerID)
	assert.Equal(t, time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC), created.Date)

	rec := httptest.NewRecorder()
	env.events.Get(rec, withID(httptest.NewRequest(http.MethodGet, "/api/events/x", nil), strconv.FormatInt(created.ID, 10)))
	require.Equal(t, http.StatusOK, rec.Code)
	details := decodeBody[detailsResponse](t, rec)
	assert.Equal(t, created, details.Event)
	assert.NotNil(t, details.Participants)
	assert.Empty(t, details.Participants)
	assert.Contains(t, rec.Body.String(), `"participants":[]`)

	rec = httptest.NewRecorder()
	env.events.List(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	list := decodeBody[[]eventJSON](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Go meetup", list[0].Title)
}

func TestEventsGetUnknown(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"999", "abc", "-3"} {
		rec := httptest.NewRecorder()
		env.events.Get(rec, withID(httptest.NewRequest(http.MethodGet, "/api/events/"+id, nil), id))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	}
}

func TestEventsCreateErrors(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signupAndLogin(t, "org@example.com")

	tests := []struct {
		name   string
		body   any
		bearer string
		status int
	}{
		{"missing token", map[string]string{"title": "t", "description": "d", "date": "2026-05-01", "location": "l"}, "", http.StatusBadRequest},
		{"empty token", map[string]string{"title": "t", "description": "d", "date": "2026-05-01", "location": "l", "token": ""}, "", http.StatusUnauthorized},
		{"unknown token", map[string]string{"title": "t", "description": "d", "date": "2026-05-01", "location": "l", "token": "deadbeef"}, "", http.StatusUnauthorized},
		{"missing title", map[string]string{"description": "d", "date": "2026-05-01", "location": "l", "token": token}, "", http.StatusBadRequest},
		{"bad date", map[string]string{"title": "t", "description": "d", "date": "not a date at all", "location": "l", "token": token}, "", http.StatusBadRequest},
		{"bearer fallback", map[string]string{"title": "t", "description": "d", "date": "2026-05-01", "location": "l"}, token, http.StatusCreated},
		{"malformed body", "[1,2", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, http.MethodPost, "/api/events", tt.body)
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			rec := httptest.NewRecorder()
			env.events.Create(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestEventsDelete(t *testing.T) {
	env := newTestEnv(t)
	_, owner := env.signupAndLogin(t, "owner@example.com")
	_, other := env.signupAndLogin(t, "other@example.com")
	event := env.createEvent(t, owner, "Party")
	id := strconv.FormatInt(event.ID, 10)

	del := func(token any, id string) *httptest.ResponseRecorder {
		body := map[string]any{}
		if token != nil {
			body["token"] = token
		}
		rec := httptest.NewRecorder()
		env.events.Delete(rec, withID(jsonRequest(t, http.MethodDelete, "/api/events/"+id, body), id))
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, del(nil, id).Code)
	assert.Equal(t, http.StatusUnauthorized, del("bogus", id).Code)
	assert.Equal(t, http.StatusNotFound, del(owner, "4242").Code)

	rec := del(other, id)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, problem.TypeForbidden, decodeBody[problem.ProblemDetails](t, rec).Type)

	assert.Equal(t, http.StatusOK, del(owner, id).Code)
	assert.Equal(t, http.StatusNotFound, del(owner, id).Code)
}

func TestEventsParticipation(t *testing.T) {
	env := newTestEnv(t)
	_, owner := env.signupAndLogin(t, "owner@example.com")
	guestID, guest := env.signupAndLogin(t, "guest@example.com")
	event := env.createEvent(t, owner, "Concert")
	id := strconv.FormatInt(event.ID, 10)

	participate := func(token, id string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		env.events.Participate(rec, withID(jsonRequest(t, http.MethodPost, "/api/events/"+id+"/participate", map[string]string{"token": token}), id))
		return rec
	}
	unparticipate := func(token, id string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		env.events.Unparticipate(rec, withID(jsonRequest(t, http.MethodPost, "/api/events/"+id+"/unparticipate", map[string]string{"token": token}), id))
		return rec
	}

	assert.Equal(t, http.StatusNotFound, participate(guest, "777").Code)
	assert.Equal(t, http.StatusUnauthorized, participate("", id).Code)
	assert.Equal(t, http.StatusNotFound, unparticipate(guest, id).Code)

	rec := participate(guest, id)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	joined := decodeBody[participantResponse](t, rec).Participant
	assert.Equal(t, guestID, joined.UserID)
	assert.Equal(t, event.ID, joined.EventID)

	assert.Equal(t, http.StatusConflict, participate(guest, id).Code)

	rec = httptest.NewRecorder()
	env.events.Get(rec, withID(httptest.NewRequest(http.MethodGet, "/api/events/"+id, nil), id))
	assert.Equal(t, []participantJSON{joined}, decodeBody[detailsResponse](t, rec).Participants)

	assert.Equal(t, http.StatusOK, unparticipate(guest, id).Code)
	assert.Equal(t, http.StatusNotFound, unparticipate(guest, id).Code)
}

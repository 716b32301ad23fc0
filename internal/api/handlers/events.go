package handlers

import (
	"net/http"

	"github.com/Noah170803/eventio/internal/auth"
	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/metrics"
	"github.com/Noah170803/eventio/internal/validation"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

// tokenBody is the body of every mutating event request. A nil Token means
// the field was absent, which is different from an empty token.
type tokenBody struct {
	Token *string `json:"token"`
}

type createEventBody struct {
	events.CreateParams
	Token *string `json:"token"`
}

type eventResponse struct {
	Event eventJSON `json:"event"`
}

type detailsResponse struct {
	Event        eventJSON         `json:"event"`
	Participants []participantJSON `json:"participants"`
}

type participantResponse struct {
	Participant participantJSON `json:"participant"`
	Message     string          `json:"message"`
}

var errMissingToken = validation.FieldError("token", "is required")

// sessionToken picks the token from the body, falling back to an
// Authorization bearer header when the body has no token field.
func sessionToken(r *http.Request, bodyToken *string) (string, error) {
	if bodyToken != nil {
		return *bodyToken, nil
	}
	token, err := auth.BearerToken(r)
	if err != nil {
		return "", errMissingToken
	}
	return token, nil
}

// List handles GET /api/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	items := make([]eventJSON, 0, len(list))
	for i := range list {
		items = append(items, toEventJSON(&list[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	details, err := h.Service.Get(r.Context(), parseID(r))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	participants := make([]participantJSON, 0, len(details.Participants))
	for i := range details.Participants {
		participants = append(participants, toParticipantJSON(&details.Participants[i]))
	}
	writeJSON(w, http.StatusOK, detailsResponse{Event: toEventJSON(details.Event), Participants: participants})
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createEventBody
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err, h.Env)
		return
	}
	token, err := sessionToken(r, body.Token)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), token, body.CreateParams)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.EventMutations.WithLabelValues("create").Inc()
	writeJSON(w, http.StatusCreated, eventResponse{Event: toEventJSON(event)})
}

// Delete handles DELETE /api/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token, ok := h.bodyToken(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), token, parseID(r)); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.EventMutations.WithLabelValues("delete").Inc()
	writeJSON(w, http.StatusOK, messageResponse{Message: "event deleted"})
}

// Participate handles POST /api/events/{id}/participate.
func (h *EventsHandler) Participate(w http.ResponseWriter, r *http.Request) {
	token, ok := h.bodyToken(w, r)
	if !ok {
		return
	}

	participant, err := h.Service.Participate(r.Context(), token, parseID(r))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.EventMutations.WithLabelValues("participate").Inc()
	writeJSON(w, http.StatusCreated, participantResponse{
		Participant: toParticipantJSON(participant),
		Message:     "registered for event",
	})
}

// Unparticipate handles POST /api/events/{id}/unparticipate.
func (h *EventsHandler) Unparticipate(w http.ResponseWriter, r *http.Request) {
	token, ok := h.bodyToken(w, r)
	if !ok {
		return
	}

	if err := h.Service.Unparticipate(r.Context(), token, parseID(r)); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.EventMutations.WithLabelValues("unparticipate").Inc()
	writeJSON(w, http.StatusOK, messageResponse{Message: "unregistered from event"})
}

func (h *EventsHandler) bodyToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body tokenBody
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err, h.Env)
		return "", false
	}
	token, err := sessionToken(r, body.Token)
	if err != nil {
		writeError(w, r, err, h.Env)
		return "", false
	}
	return token, true
}

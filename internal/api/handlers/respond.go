package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Noah170803/eventio/internal/api/problem"
	"github.com/Noah170803/eventio/internal/auth"
	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeJSON reads a JSON object into dst. An empty body decodes as {} so
// the field checks that follow report what is missing.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeDecodeError answers a body that is not a JSON object.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeBadRequest, "Request body too large", err, env,
			problem.WithDetail(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)))
		return
	}
	problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Invalid request", err, env,
		problem.WithDetail("request body must be a JSON object"))
}

// parseID turns the {id} path value into an event id. Anything that is not a
// positive integer maps to 0, which no stored event has.
func parseID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var verr validation.Error
	switch {
	case errors.As(err, &verr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithDetail(verr.Error()), problem.WithFieldErrors(verr.Fields))
	case errors.Is(err, auth.ErrUnauthorized):
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env,
			problem.WithDetail("a valid session token is required"))
	case errors.Is(err, users.ErrInvalidCredentials):
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env,
			problem.WithDetail(err.Error()))
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", err, env,
			problem.WithDetail(err.Error()))
	case errors.Is(err, events.ErrNotFound), errors.Is(err, events.ErrNotParticipating):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env,
			problem.WithDetail(err.Error()))
	case errors.Is(err, users.ErrEmailTaken), errors.Is(err, events.ErrAlreadyParticipating):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Conflict", err, env,
			problem.WithDetail(err.Error()))
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}

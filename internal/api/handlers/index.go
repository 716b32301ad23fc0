package handlers

import (
	"net/http"
)

const indexText = `eventio API

POST   /api/auth/signup
POST   /api/auth/login
POST   /api/auth/logout
GET    /api/events
GET    /api/events/{id}
POST   /api/events
DELETE /api/events/{id}
POST   /api/events/{id}/participate
POST   /api/events/{id}/unparticipate
`

// Index handles GET /api with a plain text route listing.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexText))
}

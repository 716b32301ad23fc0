package handlers

import (
	"time"

	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
)

// userJSON never carries the stored password.
type userJSON struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type eventJSON struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	OrganizerID int64     `json:"organizerId"`
}

type participantJSON struct {
	ID      int64 `json:"id"`
	UserID  int64 `json:"userId"`
	EventID int64 `json:"eventId"`
}

func toUserJSON(u *users.User) userJSON {
	return userJSON{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

func toEventJSON(e *events.Event) eventJSON {
	return eventJSON{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date.UTC(),
		Location:    e.Location,
		OrganizerID: e.OrganizerID,
	}
}

func toParticipantJSON(p *events.Participant) participantJSON {
	return participantJSON{ID: p.ID, UserID: p.UserID, EventID: p.EventID}
}

package events

import (
	"context"
	"time"
)

// Event is a gathering created by its organizer. Events are never updated.
type Event struct {
	ID          int64
	Title       string
	Description string
	Date        time.Time
	Location    string
	OrganizerID int64
}

// Participant records that a user joined an event. (UserID, EventID) is
// unique.
type Participant struct {
	ID      int64
	UserID  int64
	EventID int64
}

type EventCreateParams struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	OrganizerID int64
}

// Repository is the persistence contract for events and participants.
//
// GetByID and Delete return ErrNotFound for unknown ids. CreateParticipant
// returns ErrAlreadyParticipating when the store rejects a duplicate pair, and
// GetParticipant/DeleteParticipant return ErrNotParticipating when no row
// matches. Deleting an event removes its participants.
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, params EventCreateParams) (*Event, error)
	Delete(ctx context.Context, id int64) error

	ListParticipants(ctx context.Context, eventID int64) ([]Participant, error)
	GetParticipant(ctx context.Context, userID, eventID int64) (*Participant, error)
	CreateParticipant(ctx context.Context, userID, eventID int64) (*Participant, error)
	DeleteParticipant(ctx context.Context, userID, eventID int64) error
}

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Noah170803/eventio/internal/audit"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/validation"
	"github.com/rs/zerolog"
)

// Authenticator resolves a session token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*users.User, error)
}

// Service implements event management and participation. Every mutating
// operation authenticates the caller first.
type Service struct {
	repo      Repository
	auth      Authenticator
	validator *validation.Validator
	audit     *audit.Logger
	logger    zerolog.Logger
}

func NewService(repo Repository, authenticator Authenticator, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	if auditLogger == nil {
		auditLogger = audit.Nop()
	}
	return &Service{
		repo:      repo,
		auth:      authenticator,
		validator: validation.New(),
		audit:     auditLogger,
		logger:    logger.With().Str("component", "events").Logger(),
	}
}

type CreateParams struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"required"`
}

// Details is an event together with its participants.
type Details struct {
	Event        *Event
	Participants []Participant
}

// List returns every event ordered by id.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Details, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if participants == nil {
		participants = []Participant{}
	}
	return &Details{Event: event, Participants: participants}, nil
}

// Create stores a new event organized by the token's owner.
func (s *Service) Create(ctx context.Context, token string, params CreateParams) (*Event, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}
	date, err := ParseDate(params.Date)
	if err != nil {
		return nil, err
	}

	user, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Create(ctx, EventCreateParams{
		Title:       params.Title,
		Description: params.Description,
		Date:        date,
		Location:    params.Location,
		OrganizerID: user.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.audit.LogSuccess(ctx, "event.create", user.Email, "event", strconv.FormatInt(event.ID, 10), map[string]string{"title": event.Title})
	return event, nil
}

// Delete removes an event and its participants. Only the organizer may
// delete.
func (s *Service) Delete(ctx context.Context, token string, id int64) error {
	user, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.OrganizerID != user.ID {
		s.audit.LogFailure(ctx, "event.delete", user.Email, map[string]string{
			"event_id": strconv.FormatInt(id, 10),
			"reason":   "not_organizer",
		})
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	s.audit.LogSuccess(ctx, "event.delete", user.Email, "event", strconv.FormatInt(id, 10), nil)
	return nil
}

// Participate adds the token's owner to the event.
func (s *Service) Participate(ctx context.Context, token string, eventID int64) (*Participant, error) {
	user, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	_, err = s.repo.GetParticipant(ctx, user.ID, eventID)
	switch {
	case err == nil:
		return nil, ErrAlreadyParticipating
	case !errors.Is(err, ErrNotParticipating):
		return nil, fmt.Errorf("lookup participant: %w", err)
	}

	participant, err := s.repo.CreateParticipant(ctx, user.ID, eventID)
	if err != nil {
		if errors.Is(err, ErrAlreadyParticipating) {
			return nil, ErrAlreadyParticipating
		}
		if errors.Is(err, ErrNotFound) {
			// Event deleted between the lookup and the insert.
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}

	s.logger.Debug().Int64("user_id", user.ID).Int64("event_id", eventID).Msg("participant added")
	return participant, nil
}

// Unparticipate removes the token's owner from the event.
func (s *Service) Unparticipate(ctx context.Context, token string, eventID int64) error {
	user, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		return err
	}

	if _, err := s.repo.GetParticipant(ctx, user.ID, eventID); err != nil {
		return err
	}

	if err := s.repo.DeleteParticipant(ctx, user.ID, eventID); err != nil {
		if errors.Is(err, ErrNotParticipating) {
			return ErrNotParticipating
		}
		return fmt.Errorf("delete participant: %w", err)
	}

	s.logger.Debug().Int64("user_id", user.ID).Int64("event_id", eventID).Msg("participant removed")
	return nil
}

package events

import (
	"errors"

	"github.com/Noah170803/eventio/internal/validation"
)

var (
	ErrNotFound             = errors.New("event not found")
	ErrForbidden            = errors.New("only the organizer can delete this event")
	ErrAlreadyParticipating = errors.New("already participating in this event")
	ErrNotParticipating     = errors.New("not participating in this event")
)

// ValidationError reports request fields that failed shape checks.
type ValidationError = validation.Error

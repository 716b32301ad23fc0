package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Noah170803/eventio/internal/domain/events"
)

type EventRepository struct {
	db *sql.DB
}

const eventColumns = `id, title, description, date, location, organizer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EventRepository) List(ctx context.Context) (_ []events.Event, err error) {
	defer func(start time.Time) { observe("list_events", start, err) }(time.Now())

	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (_ *events.Event, err error) {
	defer func(start time.Time) { observe("get_event", start, err) }(time.Now())

	return scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
}

func scanEvent(row rowScanner) (*events.Event, error) {
	var (
		event events.Event
		date  int64
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&date,
		&event.Location,
		&event.OrganizerID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	event.Date = fromMillis(date)
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.EventCreateParams) (_ *events.Event, err error) {
	defer func(start time.Time) { observe("create_event", start, err) }(time.Now())

	event, err := scanEvent(r.db.QueryRowContext(ctx, `
INSERT INTO events (title, description, date, location, organizer_id)
VALUES (?, ?, ?, ?, ?)
RETURNING `+eventColumns,
		params.Title, params.Description, toMillis(params.Date), params.Location, params.OrganizerID,
	))
	if err != nil && isForeignKeyViolation(err) {
		return nil, fmt.Errorf("create event: organizer %d does not exist: %w", params.OrganizerID, err)
	}
	return event, err
}

func (r *EventRepository) Delete(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { observe("delete_event", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) ListParticipants(ctx context.Context, eventID int64) (_ []events.Participant, err error) {
	defer func(start time.Time) { observe("list_participants", start, err) }(time.Now())

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, event_id
  FROM participants
 WHERE event_id = ?
 ORDER BY id
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	items := make([]events.Participant, 0)
	for rows.Next() {
		var p events.Participant
		if err := rows.Scan(&p.ID, &p.UserID, &p.EventID); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return items, nil
}

func (r *EventRepository) GetParticipant(ctx context.Context, userID, eventID int64) (_ *events.Participant, err error) {
	defer func(start time.Time) { observe("get_participant", start, err) }(time.Now())

	var p events.Participant
	err = r.db.QueryRowContext(ctx, `
SELECT id, user_id, event_id
  FROM participants
 WHERE user_id = ? AND event_id = ?
`, userID, eventID).Scan(&p.ID, &p.UserID, &p.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, events.ErrNotParticipating
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return &p, nil
}

func (r *EventRepository) CreateParticipant(ctx context.Context, userID, eventID int64) (_ *events.Participant, err error) {
	defer func(start time.Time) { observe("create_participant", start, err) }(time.Now())

	p := events.Participant{UserID: userID, EventID: eventID}
	err = r.db.QueryRowContext(ctx, `
INSERT INTO participants (user_id, event_id)
VALUES (?, ?)
RETURNING id
`, userID, eventID).Scan(&p.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, events.ErrAlreadyParticipating
		case isForeignKeyViolation(err):
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	return &p, nil
}

func (r *EventRepository) DeleteParticipant(ctx context.Context, userID, eventID int64) (err error) {
	defer func(start time.Time) { observe("delete_participant", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE user_id = ? AND event_id = ?`, userID, eventID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if affected == 0 {
		return events.ErrNotParticipating
	}
	return nil
}

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Event is one calendar event owned by a user. Priority 0 is a real value;
// Modifiable guards the priority against automated rescheduling.
type Event struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	TaskID        *int64     `json:"task_id,omitempty"`
	GoogleEventID *string    `json:"google_event_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Priority      int        `json:"priority"`
	Modifiable    bool       `json:"modifiable"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

const eventColumns = `id, user_id, task_id, google_event_id, title, description,
	start_time, end_time, priority, modifiable, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	var event Event
	var taskID sql.NullInt64
	var googleID sql.NullString
	var endTime sql.NullTime

	err := row.Scan(
		&event.ID, &event.UserID, &taskID, &googleID, &event.Title, &event.Description,
		&event.StartTime, &endTime, &event.Priority, &event.Modifiable,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if taskID.Valid {
		event.TaskID = &taskID.Int64
	}
	if googleID.Valid {
		event.GoogleEventID = &googleID.String
	}
	if endTime.Valid {
		event.EndTime = &endTime.Time
	}
	return &event, nil
}

// CreateEvent inserts a new event. The event must have UserID, Title and
// StartTime set.
func (d *DB) CreateEvent(event *Event) (*Event, error) {
	result, err := d.Exec(`
		INSERT INTO events (
			user_id, task_id, google_event_id, title, description,
			start_time, end_time, priority, modifiable
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.UserID, event.TaskID, event.GoogleEventID, event.Title, event.Description,
		event.StartTime, event.EndTime, event.Priority, event.Modifiable,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get event id: %w", err)
	}

	event.ID = id
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	return event, nil
}

// GetEvent retrieves an event by id scoped to a user.
// Returns (nil, nil) when no event is found.
func (d *DB) GetEvent(userID, id int64) (*Event, error) {
	event, err := scanEvent(d.QueryRow(`
		SELECT `+eventColumns+` FROM events WHERE id = ? AND user_id = ?
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// SetEventPriority mutates only the priority and modifiable flags.
func (d *DB) SetEventPriority(userID, id int64, priority int, modifiable bool) error {
	result, err := d.Exec(`
		UPDATE events SET priority = ?, modifiable = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, priority, modifiable, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update event priority: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("event %d not found for user %d", id, userID)
	}
	return nil
}

// DeleteEvent removes the event record. Index cleanup (vector store, time
// preferences) happens before this call; see the delete-event executor.
func (d *DB) DeleteEvent(userID, id int64) error {
	result, err := d.Exec(`DELETE FROM events WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("event %d not found for user %d", id, userID)
	}
	return nil
}

// NextEventAfter returns the user's next event starting after t.
// Returns (nil, nil) when there is none.
func (d *DB) NextEventAfter(userID int64, t time.Time) (*Event, error) {
	event, err := scanEvent(d.QueryRow(`
		SELECT `+eventColumns+` FROM events
		WHERE user_id = ? AND start_time > ?
		ORDER BY start_time ASC LIMIT 1
	`, userID, t))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next event: %w", err)
	}
	return event, nil
}

// EventsInRange lists a user's events whose start time falls inside
// [start, end), ordered by start time. Used to rebuild the vector index.
func (d *DB) EventsInRange(userID int64, start, end time.Time) ([]Event, error) {
	rows, err := d.Query(`
		SELECT `+eventColumns+` FROM events
		WHERE user_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time ASC
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

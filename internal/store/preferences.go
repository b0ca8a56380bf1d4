package store

import (
	"database/sql"
	"fmt"
)

// TimePreferenceRule is one preferred-time rule attached to an event: an
// optional weekday (nil = any day) plus an HH:MM window.
type TimePreferenceRule struct {
	ID        int64  `json:"id"`
	EventID   int64  `json:"event_id"`
	Weekday   *int   `json:"weekday,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ListTimePreferences returns every preferred-time rule for an event.
func (d *DB) ListTimePreferences(eventID int64) ([]TimePreferenceRule, error) {
	rows, err := d.Query(`
		SELECT id, event_id, weekday, start_time, end_time
		FROM time_preferences WHERE event_id = ?
		ORDER BY id ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time preferences: %w", err)
	}
	defer rows.Close()

	var prefs []TimePreferenceRule
	for rows.Next() {
		var p TimePreferenceRule
		var weekday sql.NullInt64
		if err := rows.Scan(&p.ID, &p.EventID, &weekday, &p.StartTime, &p.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan time preference: %w", err)
		}
		if weekday.Valid {
			day := int(weekday.Int64)
			p.Weekday = &day
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// AddTimePreference inserts one rule for an event.
func (d *DB) AddTimePreference(eventID int64, weekday *int, startTime, endTime string) (int64, error) {
	var day any
	if weekday != nil {
		day = *weekday
	}

	result, err := d.Exec(`
		INSERT INTO time_preferences (event_id, weekday, start_time, end_time)
		VALUES (?, ?, ?, ?)
	`, eventID, day, startTime, endTime)
	if err != nil {
		return 0, fmt.Errorf("failed to add time preference: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get time preference id: %w", err)
	}
	return id, nil
}

// DeleteTimePreference removes one rule by id.
func (d *DB) DeleteTimePreference(id int64) error {
	result, err := d.Exec(`DELETE FROM time_preferences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time preference: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("time preference %d not found", id)
	}
	return nil
}

// DeleteTimePreferencesForEvent removes every rule for an event. Part of the
// index cleanup that runs before the event record itself is deleted.
func (d *DB) DeleteTimePreferencesForEvent(eventID int64) error {
	if _, err := d.Exec(`DELETE FROM time_preferences WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to delete time preferences for event %d: %w", eventID, err)
	}
	return nil
}

package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetCarryState returns the serialized carry state for a conversation, or
// ("", false, nil) when the conversation has no in-progress state.
func (d *DB) GetCarryState(conversationID string) (string, bool, error) {
	var payload string
	err := d.QueryRow(`
		SELECT carry_state FROM conversations WHERE id = ?
	`, conversationID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get carry state: %w", err)
	}
	return payload, true, nil
}

// PutCarryState upserts the carry state for a conversation.
func (d *DB) PutCarryState(conversationID string, userID int64, payload string) error {
	_, err := d.Exec(`
		INSERT INTO conversations (id, user_id, carry_state, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			carry_state = excluded.carry_state,
			updated_at = CURRENT_TIMESTAMP
	`, conversationID, userID, payload)
	if err != nil {
		return fmt.Errorf("failed to put carry state: %w", err)
	}
	return nil
}

// DeleteCarryState discards a conversation's carry state. Deleting a
// conversation that has none is not an error.
func (d *DB) DeleteCarryState(conversationID string) error {
	if _, err := d.Exec(`DELETE FROM conversations WHERE id = ?`, conversationID); err != nil {
		return fmt.Errorf("failed to delete carry state: %w", err)
	}
	return nil
}

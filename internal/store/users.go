package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is the owner of events and conversations.
type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name,omitempty"`
	Timezone   string    `json:"timezone"`
	CreatedAt  time.Time `json:"created_at"`
}

// EnsureUser returns the user with the given external id, creating it when
// it does not exist yet.
func (d *DB) EnsureUser(externalID, name, timezone string) (*User, error) {
	if timezone == "" {
		timezone = "UTC"
	}

	var user User
	err := d.QueryRow(`
		SELECT id, external_id, name, timezone, created_at FROM users WHERE external_id = ?
	`, externalID).Scan(&user.ID, &user.ExternalID, &user.Name, &user.Timezone, &user.CreatedAt)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	result, err := d.Exec(`
		INSERT INTO users (external_id, name, timezone) VALUES (?, ?, ?)
	`, externalID, name, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	return &User{
		ID:         id,
		ExternalID: externalID,
		Name:       name,
		Timezone:   timezone,
		CreatedAt:  time.Now(),
	}, nil
}

// ListUsers returns every user. Used to rebuild the vector index on startup.
func (d *DB) ListUsers() ([]User, error) {
	rows, err := d.Query(`SELECT id, external_id, name, timezone, created_at FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.ExternalID, &u.Name, &u.Timezone, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

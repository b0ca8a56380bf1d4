package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Task is a checklist backing a task-type event.
type Task struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Items     []string  `json:"items,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTask inserts a task and returns it with its id set.
func (d *DB) CreateTask(task *Task) (*Task, error) {
	items, err := json.Marshal(task.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task items: %w", err)
	}

	result, err := d.Exec(`
		INSERT INTO tasks (user_id, title, items) VALUES (?, ?, ?)
	`, task.UserID, task.Title, string(items))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get task id: %w", err)
	}

	task.ID = id
	task.CreatedAt = time.Now()
	return task, nil
}

// GetTask retrieves a task by id scoped to a user.
// Returns (nil, nil) when no task is found.
func (d *DB) GetTask(userID, id int64) (*Task, error) {
	var task Task
	var items sql.NullString

	err := d.QueryRow(`
		SELECT id, user_id, title, items, created_at FROM tasks
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&task.ID, &task.UserID, &task.Title, &items, &task.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if items.Valid && items.String != "" {
		if err := json.Unmarshal([]byte(items.String), &task.Items); err != nil {
			return nil, fmt.Errorf("failed to decode task items: %w", err)
		}
	}
	return &task, nil
}

// DeleteTask removes a task by id scoped to a user.
func (d *DB) DeleteTask(userID, id int64) error {
	result, err := d.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %d not found for user %d", id, userID)
	}
	return nil
}

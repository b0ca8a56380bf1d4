package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

var testUserCounter int64 = 0

// CreateTestUser creates a unique test user.
func CreateTestUser(t *testing.T, db *DB) *User {
	t.Helper()
	testUserCounter++

	user, err := db.EnsureUser(
		fmt.Sprintf("test-user-%d", testUserCounter),
		fmt.Sprintf("Test User %d", testUserCounter),
		"UTC",
	)
	require.NoError(t, err, "failed to create test user")
	return user
}

// CreateTestEvent inserts an event with sensible defaults for tests.
func CreateTestEvent(t *testing.T, db *DB, userID int64, title string, start time.Time) *Event {
	t.Helper()

	event, err := db.CreateEvent(&Event{
		UserID:     userID,
		Title:      title,
		StartTime:  start,
		Modifiable: true,
	})
	require.NoError(t, err, "failed to create test event")
	return event
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}

// Int64Ptr returns a pointer to the given int64
func Int64Ptr(i int64) *int64 {
	return &i
}

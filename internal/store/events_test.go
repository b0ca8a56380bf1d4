package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLifecycle(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	start := time.Date(2024, 6, 20, 14, 0, 0, 0, time.UTC)
	created, err := db.CreateEvent(&Event{
		UserID:     user.ID,
		Title:      "budget review",
		StartTime:  start,
		Priority:   3,
		Modifiable: true,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := db.GetEvent(user.ID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "budget review", got.Title)
	assert.Equal(t, 3, got.Priority)
	assert.True(t, got.Modifiable)
	assert.True(t, got.StartTime.Equal(start))

	require.NoError(t, db.DeleteEvent(user.ID, created.ID))

	got, err = db.GetEvent(user.ID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetEvent_ScopedToUser(t *testing.T) {
	db := NewTestDB(t)
	owner := CreateTestUser(t, db)
	other := CreateTestUser(t, db)

	event := CreateTestEvent(t, db, owner.ID, "standup", time.Now().Add(time.Hour))

	got, err := db.GetEvent(other.ID, event.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "another user's event must not be visible")
}

func TestSetEventPriority_TouchesOnlyPriorityFields(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)
	event := CreateTestEvent(t, db, user.ID, "design sync", time.Now().Add(time.Hour))

	require.NoError(t, db.SetEventPriority(user.ID, event.ID, 0, false))

	got, err := db.GetEvent(user.ID, event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Priority, "zero priority is a real value")
	assert.False(t, got.Modifiable)
	assert.Equal(t, "design sync", got.Title, "other fields untouched")

	err = db.SetEventPriority(user.ID, event.ID+999, 5, true)
	assert.Error(t, err, "missing event surfaces as an error")
}

func TestNextEventAfter(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	CreateTestEvent(t, db, user.ID, "yesterday", now.Add(-24*time.Hour))
	soon := CreateTestEvent(t, db, user.ID, "soon", now.Add(2*time.Hour))
	CreateTestEvent(t, db, user.ID, "later", now.Add(48*time.Hour))

	next, err := db.NextEventAfter(user.ID, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, soon.ID, next.ID)

	none, err := db.NextEventAfter(user.ID, now.Add(100*24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEventsInRange(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	CreateTestEvent(t, db, user.ID, "before", base.Add(-time.Hour))
	inside := CreateTestEvent(t, db, user.ID, "inside", base.Add(24*time.Hour))
	CreateTestEvent(t, db, user.ID, "after", base.Add(30*24*time.Hour))

	events, err := db.EventsInRange(user.ID, base, base.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, inside.ID, events[0].ID)
}

func TestEventWithLinkedTask(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	task, err := db.CreateTask(&Task{UserID: user.ID, Title: "groceries", Items: []string{"milk", "bread"}})
	require.NoError(t, err)

	event, err := db.CreateEvent(&Event{
		UserID:     user.ID,
		TaskID:     &task.ID,
		Title:      "grocery run",
		StartTime:  time.Now().Add(time.Hour),
		Modifiable: true,
	})
	require.NoError(t, err)

	got, err := db.GetEvent(user.ID, event.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TaskID)
	assert.Equal(t, task.ID, *got.TaskID)

	gotTask, err := db.GetTask(user.ID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, gotTask)
	assert.Equal(t, []string{"milk", "bread"}, gotTask.Items)

	require.NoError(t, db.DeleteTask(user.ID, task.ID))
	gotTask, err = db.GetTask(user.ID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gotTask)
}

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimePreferences(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)
	event := CreateTestEvent(t, db, user.ID, "standup", time.Now().Add(time.Hour))

	monday := 1
	mondayID, err := db.AddTimePreference(event.ID, &monday, "09:00", "10:00")
	require.NoError(t, err)

	_, err = db.AddTimePreference(event.ID, nil, "14:00", "15:00")
	require.NoError(t, err)

	prefs, err := db.ListTimePreferences(event.ID)
	require.NoError(t, err)
	require.Len(t, prefs, 2)

	require.NotNil(t, prefs[0].Weekday)
	assert.Equal(t, 1, *prefs[0].Weekday)
	assert.Equal(t, "09:00", prefs[0].StartTime)
	assert.Nil(t, prefs[1].Weekday, "weekday-less rule round-trips as nil")

	require.NoError(t, db.DeleteTimePreference(mondayID))
	prefs, err = db.ListTimePreferences(event.ID)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Nil(t, prefs[0].Weekday)

	assert.Error(t, db.DeleteTimePreference(mondayID), "double delete errors")
}

func TestDeleteTimePreferencesForEvent(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)
	event := CreateTestEvent(t, db, user.ID, "standup", time.Now().Add(time.Hour))

	monday := 1
	_, err := db.AddTimePreference(event.ID, &monday, "09:00", "10:00")
	require.NoError(t, err)

	require.NoError(t, db.DeleteTimePreferencesForEvent(event.ID))
	prefs, err := db.ListTimePreferences(event.ID)
	require.NoError(t, err)
	assert.Empty(t, prefs)

	// Idempotent when nothing is left.
	require.NoError(t, db.DeleteTimePreferencesForEvent(event.ID))
}

func TestCarryStateRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	_, found, err := db.GetCarryState("conv-1")
	require.NoError(t, err)
	assert.False(t, found)

	payload := `{"body":{"title":"budget review"},"last_user_text":"delete my meeting"}`
	require.NoError(t, db.PutCarryState("conv-1", user.ID, payload))

	got, found, err := db.GetCarryState("conv-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, payload, got)

	// Upsert replaces.
	updated := `{"body":{"title":"budget review","priority":0}}`
	require.NoError(t, db.PutCarryState("conv-1", user.ID, updated))
	got, found, err = db.GetCarryState("conv-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, updated, got)

	require.NoError(t, db.DeleteCarryState("conv-1"))
	_, found, err = db.GetCarryState("conv-1")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting absent state is fine.
	require.NoError(t, db.DeleteCarryState("conv-1"))
}

package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocation(t *testing.T) {
	loc, fallback := ResolveLocation("America/New_York")
	assert.False(t, fallback)
	assert.Equal(t, "America/New_York", loc.String())

	loc, fallback = ResolveLocation("")
	assert.True(t, fallback)
	assert.Equal(t, time.UTC, loc)

	loc, fallback = ResolveLocation("Not/AZone")
	assert.True(t, fallback)
	assert.Equal(t, time.UTC, loc)
}

func TestParseClientTime(t *testing.T) {
	// Explicit offset is preserved.
	got, err := ParseClientTime("2025-03-10T12:00:00-04:00", "UTC")
	require.NoError(t, err)
	_, offset := got.Zone()
	assert.Equal(t, -4*3600, offset)

	// Offset-less values land in the client's timezone.
	got, err = ParseClientTime("2025-03-10 12:00", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", got.Location().String())
	assert.Equal(t, 12, got.Hour())

	_, err = ParseClientTime("half past noon", "UTC")
	assert.Error(t, err)

	_, err = ParseClientTime("", "UTC")
	assert.Error(t, err)
}

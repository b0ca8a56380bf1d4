package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecurrenceRule(t *testing.T) {
	tests := []struct {
		name       string
		frequency  string
		interval   int
		byWeekday  []string
		count      int
		until      string
		byMonthDay []int
		expected   string
	}{
		{
			name:      "weekly with interval and until",
			frequency: "weekly",
			interval:  2,
			until:     "2025-01-01",
			expected:  "FREQ=WEEKLY;INTERVAL=2;UNTIL=20250101T000000Z",
		},
		{
			name:      "interval of one is omitted",
			frequency: "daily",
			interval:  1,
			count:     5,
			expected:  "FREQ=DAILY;COUNT=5",
		},
		{
			name:      "count wins over until",
			frequency: "weekly",
			count:     10,
			until:     "2025-01-01",
			expected:  "FREQ=WEEKLY;COUNT=10",
		},
		{
			name:      "weekday names map to two letter codes",
			frequency: "weekly",
			byWeekday: []string{"Monday", "wednesday", "FRIDAY"},
			expected:  "FREQ=WEEKLY;BYDAY=MO,WE,FR",
		},
		{
			name:       "monthly by month day",
			frequency:  "monthly",
			byMonthDay: []int{1, 15},
			expected:   "FREQ=MONTHLY;BYMONTHDAY=1,15",
		},
		{
			name:      "unknown frequency falls back to weekly",
			frequency: "fortnightly-ish",
			expected:  "FREQ=WEEKLY",
		},
		{
			name:      "unknown weekday names are skipped",
			frequency: "weekly",
			byWeekday: []string{"monday", "someday"},
			expected:  "FREQ=WEEKLY;BYDAY=MO",
		},
		{
			name:      "unparseable until is dropped",
			frequency: "weekly",
			until:     "next year sometime",
			expected:  "FREQ=WEEKLY",
		},
		{
			name:      "neither count nor until is a valid unbounded rule",
			frequency: "yearly",
			expected:  "FREQ=YEARLY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildRecurrenceRule(tt.frequency, tt.interval, tt.byWeekday, tt.count, tt.until, tt.byMonthDay)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildRecurrenceRule_OutputIsParseable(t *testing.T) {
	rule := BuildRecurrenceRule("weekly", 2, []string{"tuesday"}, 0, "2025-01-01", nil)

	dtstart := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	occurrences, err := RuleOccurrences(rule, dtstart, 3)
	require.NoError(t, err)
	require.Len(t, occurrences, 3)

	for _, occ := range occurrences {
		assert.Equal(t, time.Tuesday, occ.Weekday())
	}
	assert.Equal(t, 14*24*time.Hour, occurrences[1].Sub(occurrences[0]))
}

func TestWeekdayCode(t *testing.T) {
	code, ok := WeekdayCode("saturday")
	require.True(t, ok)
	assert.Equal(t, "SA", code)

	_, ok = WeekdayCode("caturday")
	assert.False(t, ok)
}

package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

var testDecl = Declaration{
	Groups: []Group{
		{Prompt: "Which event do you mean?", AnyOf: []Field{FieldTitle, FieldSummary}},
		{Prompt: "What priority should it have?", AnyOf: []Field{FieldPriority}},
	},
}

func TestFindMissing(t *testing.T) {
	tests := []struct {
		name           string
		body           Body
		expectedPrompt string // empty means satisfied
	}{
		{
			name:           "empty body misses first group",
			body:           Body{},
			expectedPrompt: "Which event do you mean?",
		},
		{
			name:           "title satisfies the one-of group",
			body:           Body{Title: "budget review"},
			expectedPrompt: "What priority should it have?",
		},
		{
			name:           "summary alone also satisfies the one-of group",
			body:           Body{Summary: "weekly budget sync"},
			expectedPrompt: "What priority should it have?",
		},
		{
			name:           "zero priority counts as present",
			body:           Body{Title: "budget review", Priority: intPtr(0)},
			expectedPrompt: "",
		},
		{
			name:           "nil priority is missing",
			body:           Body{Title: "budget review"},
			expectedPrompt: "What priority should it have?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing, err := FindMissing(testDecl, tt.body)
			require.NoError(t, err)

			if tt.expectedPrompt == "" {
				assert.Nil(t, missing)
			} else {
				require.NotNil(t, missing)
				assert.Equal(t, tt.expectedPrompt, missing.Prompt)
			}
		})
	}
}

func TestFindMissing_ReturnsFirstUnsatisfiedOnly(t *testing.T) {
	missing, err := FindMissing(testDecl, Body{})
	require.NoError(t, err)
	require.NotNil(t, missing)

	// Both groups are unsatisfied but only the first is reported.
	assert.Equal(t, []Field{FieldTitle, FieldSummary}, missing.AnyOf)
}

func TestFindMissing_EmptyGroupIsInvariantViolation(t *testing.T) {
	decl := Declaration{Groups: []Group{{Prompt: "broken"}}}

	_, err := FindMissing(decl, Body{Title: "anything"})
	assert.ErrorIs(t, err, ErrEmptyGroup)
}

func TestMerge_NeverClearsConfirmedFields(t *testing.T) {
	carried := Body{
		Title:    "budget review",
		Priority: intPtr(0),
	}
	fresh := Body{
		Title:       "something else entirely",
		Description: "quarterly numbers",
		Priority:    intPtr(5),
	}

	merged := Merge(carried, fresh)

	assert.Equal(t, "budget review", merged.Title, "confirmed title survives")
	assert.Equal(t, 0, *merged.Priority, "explicit zero survives")
	assert.Equal(t, "quarterly numbers", merged.Description, "empty field is filled")
}

func TestMerge_FillsAllEmptyFields(t *testing.T) {
	monday := 1
	fresh := Body{
		Summary:  "standup",
		TaskList: []string{"prepare notes"},
		PreferredTimes: []TimePreference{
			{Weekday: &monday, StartTime: "09:00", EndTime: "10:00"},
		},
		Recurrence: "FREQ=WEEKLY",
		HasDate:    true,
	}

	merged := Merge(Body{}, fresh)
	assert.Equal(t, fresh, merged)
}

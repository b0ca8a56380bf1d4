package slots

// Field identifies one slot a skill may require.
type Field string

const (
	FieldTitle          Field = "title"
	FieldSummary        Field = "summary"
	FieldDescription    Field = "description"
	FieldPriority       Field = "priority"
	FieldTaskList       Field = "task_list"
	FieldRecurrence     Field = "recurrence"
	FieldPreferredTimes Field = "preferred_times"
	FieldDate           Field = "date"
)

// TimePreference is one preferred-time rule: an optional weekday (0=Sunday,
// nil = any day) plus an HH:MM start and end.
type TimePreference struct {
	Weekday   *int   `json:"weekday,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Body is the closed set of parameters a skill invocation can carry. It is
// filled incrementally across turns; pointer fields distinguish "explicitly
// zero" from "not provided" (priority 0 is a real value, not a missing one).
type Body struct {
	Title          string           `json:"title,omitempty"`
	Summary        string           `json:"summary,omitempty"`
	Description    string           `json:"description,omitempty"`
	Priority       *int             `json:"priority,omitempty"`
	TaskList       []string         `json:"task_list,omitempty"`
	Recurrence     string           `json:"recurrence,omitempty"`
	PreferredTimes []TimePreference `json:"preferred_times,omitempty"`

	// HasDate is set by the controller once a temporal fragment for the
	// turn pinned down a date, so date-batched requirement groups can be
	// validated without the slots package knowing about fragments.
	HasDate bool `json:"has_date,omitempty"`
}

// Has reports whether a field is present and non-empty in the body.
func (b Body) Has(f Field) bool {
	switch f {
	case FieldTitle:
		return b.Title != ""
	case FieldSummary:
		return b.Summary != ""
	case FieldDescription:
		return b.Description != ""
	case FieldPriority:
		return b.Priority != nil
	case FieldTaskList:
		return len(b.TaskList) > 0
	case FieldRecurrence:
		return b.Recurrence != ""
	case FieldPreferredTimes:
		return len(b.PreferredTimes) > 0
	case FieldDate:
		return b.HasDate
	default:
		return false
	}
}

// Merge fills empty fields of dst from src and returns the result. A field
// already confirmed in dst is never overwritten by a later turn.
func Merge(dst, src Body) Body {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Summary == "" {
		dst.Summary = src.Summary
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.Priority == nil {
		dst.Priority = src.Priority
	}
	if len(dst.TaskList) == 0 {
		dst.TaskList = src.TaskList
	}
	if dst.Recurrence == "" {
		dst.Recurrence = src.Recurrence
	}
	if len(dst.PreferredTimes) == 0 {
		dst.PreferredTimes = src.PreferredTimes
	}
	if !dst.HasDate {
		dst.HasDate = src.HasDate
	}
	return dst
}

package temporal

import "time"

// Unit is a relative-delta unit.
type Unit string

const (
	UnitMinute Unit = "minute"
	UnitHour   Unit = "hour"
	UnitDay    Unit = "day"
	UnitWeek   Unit = "week"
	UnitMonth  Unit = "month"
	UnitYear   Unit = "year"
)

// Direction says which way a relative delta points from the current time.
type Direction string

const (
	DirectionFuture Direction = "future"
	DirectionPast   Direction = "past"
)

// Relative is a delta from the current time, e.g. "in 2 weeks".
// Magnitudes is a list so compound phrases ("in 1 week and 2 days" with
// unit=day would carry [9]) can be summed by the resolver.
type Relative struct {
	Direction  Direction `json:"direction"`
	Unit       Unit      `json:"unit"`
	Magnitudes []int     `json:"magnitudes"`
}

// Fragment is a partially-specified point in time. Every field is optional;
// resolution always happens against an explicit current time and timezone so
// the same fragment resolves to the same instant for the same inputs.
type Fragment struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`

	// Hour/Minute are pointers so midnight (0) is distinguishable from unset.
	Hour   *int `json:"hour,omitempty"`
	Minute *int `json:"minute,omitempty"`

	// NamedTime is a coarse time of day: morning, noon, afternoon, evening, night.
	NamedTime string `json:"named_time,omitempty"`

	// Weekday is 0=Sunday..6=Saturday.
	Weekday *int `json:"weekday,omitempty"`

	Relative *Relative `json:"relative,omitempty"`

	// DurationMinutes is an explicit duration attached to the fragment
	// ("for 45 minutes"). It does not affect instant resolution.
	DurationMinutes int `json:"duration_minutes,omitempty"`
}

// IsZero reports whether nothing at all is specified.
func (f *Fragment) IsZero() bool {
	if f == nil {
		return true
	}
	return f.Year == 0 && f.Month == 0 && f.Day == 0 &&
		f.Hour == nil && f.Minute == nil && f.NamedTime == "" &&
		f.Weekday == nil && f.Relative == nil && f.DurationMinutes == 0
}

// HasDate reports whether the fragment pins down a calendar date on its own,
// either explicitly or via a weekday/relative reference.
func (f *Fragment) HasDate() bool {
	if f == nil {
		return false
	}
	return (f.Year != 0 && f.Month != 0 && f.Day != 0) || f.Weekday != nil || f.Relative != nil
}

// HasClock reports whether the fragment carries any time-of-day information.
func (f *Fragment) HasClock() bool {
	if f == nil {
		return false
	}
	return f.Hour != nil || f.NamedTime != ""
}

// Boundary bounds where the event disambiguator may search.
type Boundary struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

package temporal

import "time"

const (
	// DefaultHour is the clock time applied when a fragment pins a date but
	// says nothing about the time of day.
	DefaultHour = 9

	defaultLookback  = 14 * 24 * time.Hour
	defaultLookahead = 28 * 24 * time.Hour
)

// namedTimes maps coarse time-of-day words to a clock hour.
var namedTimes = map[string]int{
	"morning":   9,
	"noon":      12,
	"afternoon": 15,
	"evening":   18,
	"night":     21,
}

// ResolveInstant turns a fragment into an absolute instant in loc.
//
// Resolution order: an explicit year+month+day wins; otherwise a weekday
// reference or relative delta is applied to now; otherwise the instant is now
// itself. The clock time is then overlaid: explicit hour/minute first, then a
// named time of day, then 09:00 when the fragment pinned a date but carried
// no time of day at all. Minute- and hour-granular deltas keep their computed
// clock so "in 2 hours" is not snapped back to the morning.
func ResolveInstant(f *Fragment, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	if f.IsZero() {
		return now
	}

	t := now
	dateResolved := false
	clockGranular := false

	switch {
	case f.Year != 0 && f.Month != 0 && f.Day != 0:
		t = time.Date(f.Year, time.Month(f.Month), f.Day, now.Hour(), now.Minute(), 0, 0, loc)
		dateResolved = true
	case f.Relative != nil:
		t = applyRelative(now, f.Relative, loc)
		switch f.Relative.Unit {
		case UnitMinute, UnitHour:
			clockGranular = true
		default:
			dateResolved = true
		}
	}

	if f.Weekday != nil {
		t = nextWeekday(t, time.Weekday(*f.Weekday), f.Relative == nil || f.Relative.Direction != DirectionPast)
		dateResolved = true
	}

	switch {
	case f.Hour != nil:
		minute := 0
		if f.Minute != nil {
			minute = *f.Minute
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), *f.Hour, minute, 0, 0, loc)
	case f.NamedTime != "":
		if hour, ok := namedTimes[f.NamedTime]; ok {
			t = time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, loc)
		}
	case dateResolved && !clockGranular:
		t = time.Date(t.Year(), t.Month(), t.Day(), DefaultHour, 0, 0, 0, loc)
	}

	return t
}

func applyRelative(now time.Time, r *Relative, loc *time.Location) time.Time {
	total := 0
	for _, m := range r.Magnitudes {
		total += m
	}
	if total == 0 {
		total = 1
	}
	if r.Direction == DirectionPast {
		total = -total
	}

	switch r.Unit {
	case UnitMinute:
		return now.Add(time.Duration(total) * time.Minute)
	case UnitHour:
		return now.Add(time.Duration(total) * time.Hour)
	case UnitDay:
		return now.AddDate(0, 0, total)
	case UnitWeek:
		return now.AddDate(0, 0, 7*total)
	case UnitMonth:
		return now.AddDate(0, total, 0)
	case UnitYear:
		return now.AddDate(total, 0, 0)
	default:
		return now
	}
}

// nextWeekday moves t to the nearest occurrence of target, strictly forward
// (or strictly backward) so "Tuesday" said on a Tuesday means next week.
func nextWeekday(t time.Time, target time.Weekday, forward bool) time.Time {
	if forward {
		days := (int(target) - int(t.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return t.AddDate(0, 0, days)
	}
	days := (int(t.Weekday()) - int(target) + 7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, -days)
}

// ResolveBoundary builds the disambiguation window from independent start and
// end fragments. A side the user did not pin down falls back to the default
// window: two weeks back, four weeks forward.
func ResolveBoundary(start, end *Fragment, now time.Time, loc *time.Location) Boundary {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	b := Boundary{
		Start: now.Add(-defaultLookback),
		End:   now.Add(defaultLookahead),
	}
	if start.HasDate() {
		b.Start = ResolveInstant(start, now, loc)
	}
	if end.HasDate() {
		b.End = ResolveInstant(end, now, loc)
	}
	return b
}

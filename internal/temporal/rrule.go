package temporal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// frequencies maps the extractor's frequency words to RRULE FREQ tokens.
var frequencies = map[string]string{
	"daily":   "DAILY",
	"weekly":  "WEEKLY",
	"monthly": "MONTHLY",
	"yearly":  "YEARLY",
	"annual":  "YEARLY",
}

// weekdayCodes maps weekday names to their iCalendar two-letter codes.
var weekdayCodes = map[string]rrule.Weekday{
	"sunday":    rrule.SU,
	"monday":    rrule.MO,
	"tuesday":   rrule.TU,
	"wednesday": rrule.WE,
	"thursday":  rrule.TH,
	"friday":    rrule.FR,
	"saturday":  rrule.SA,
}

// BuildRecurrenceRule emits an RRULE string from the pieces the extractor
// produced. It is total: unknown frequency words fall back to WEEKLY and
// unknown weekday names are skipped rather than failing the turn.
//
// INTERVAL is emitted only when greater than 1. When both a count and an
// until date are supplied, COUNT wins and UNTIL is dropped; emitting both is
// invalid iCalendar and the count is the more specific request.
func BuildRecurrenceRule(frequency string, interval int, byWeekday []string, count int, untilDate string, byMonthDay []int) string {
	freq, ok := frequencies[strings.ToLower(strings.TrimSpace(frequency))]
	if !ok {
		freq = "WEEKLY"
	}

	parts := []string{"FREQ=" + freq}

	if interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(interval))
	}

	switch {
	case count > 0:
		parts = append(parts, "COUNT="+strconv.Itoa(count))
	case untilDate != "":
		if until, err := time.Parse("2006-01-02", untilDate); err == nil {
			parts = append(parts, "UNTIL="+until.UTC().Format("20060102T150405Z"))
		}
	}

	if codes := weekdayList(byWeekday); len(codes) > 0 {
		parts = append(parts, "BYDAY="+strings.Join(codes, ","))
	}

	if len(byMonthDay) > 0 {
		days := make([]string, len(byMonthDay))
		for i, d := range byMonthDay {
			days[i] = strconv.Itoa(d)
		}
		parts = append(parts, "BYMONTHDAY="+strings.Join(days, ","))
	}

	return strings.Join(parts, ";")
}

func weekdayList(names []string) []string {
	var codes []string
	for _, name := range names {
		if wd, ok := weekdayCodes[strings.ToLower(strings.TrimSpace(name))]; ok {
			codes = append(codes, wd.String())
		}
	}
	return codes
}

// WeekdayCode returns the two-letter iCalendar code for a weekday name.
func WeekdayCode(name string) (string, bool) {
	wd, ok := weekdayCodes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return wd.String(), true
}

// RuleOccurrences expands a recurrence rule from dtstart into its first n
// occurrences. Used to preview a recurring preference back to the user.
func RuleOccurrences(rule string, dtstart time.Time, n int) ([]time.Time, error) {
	opts, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	opts.Dtstart = dtstart

	r, err := rrule.NewRRule(*opts)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}

	iter := r.Iterator()
	var out []time.Time
	for len(out) < n {
		t, ok := iter()
		if !ok {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

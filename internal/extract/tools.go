package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adilevin/donna/internal/agent"
	"github.com/adilevin/donna/internal/slots"
	"github.com/adilevin/donna/internal/temporal"
)

const (
	intentToolName   = "record_intent"
	datetimeToolName = "record_datetime"
)

var weekdayIndex = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

var weekdayProperty = agent.PropertyEnum(
	"Day of the week, lowercase full name.",
	[]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
)

// recordIntentTool captures the action and its parameters.
var recordIntentTool = agent.Tool{
	Name: intentToolName,
	Description: `Records the calendar action the user is asking for along with every
parameter they supplied. Call this exactly once per message. Only fill fields the user
actually stated; leave everything else out. If the message continues an earlier
exchange, fill only what THIS message adds. Use action "unknown" when the message is
not a supported calendar request.`,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"action":      agent.PropertyEnum("The calendar action requested.", KnownActions),
		"title":       agent.PropertyString("Event title as the user referred to it, e.g. 'the budget review'."),
		"summary":     agent.PropertyString("Short event summary, when given instead of a title."),
		"description": agent.PropertyString("Longer free-form description of the event."),
		"priority":    agent.PropertyInt("Numeric priority the user wants, 0 or higher. 0 is a valid value."),
		"task_list": agent.PropertyArray("Task items mentioned, for task-backed events.",
			map[string]any{"type": "string"}),
		"preferred_times": agent.PropertyArray("Preferred time rules mentioned, one per weekday named.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"weekday":    weekdayProperty,
					"start_time": agent.PropertyString("Start of the window, HH:MM 24h."),
					"end_time":   agent.PropertyString("End of the window, HH:MM 24h."),
				},
			}),
		"recurrence": agent.PropertyObject("Recurrence the user described, e.g. 'every 2 weeks until January'.",
			map[string]any{
				"frequency": agent.PropertyEnum("Recurrence frequency.", []string{"daily", "weekly", "monthly", "yearly"}),
				"interval":  agent.PropertyInt("Every N periods. Omit when 1."),
				"weekdays": agent.PropertyArray("Weekdays the recurrence applies to.",
					map[string]any{"type": "string"}),
				"count":      agent.PropertyInt("Total number of occurrences, when stated."),
				"until_date": agent.PropertyString("Last date of the recurrence, YYYY-MM-DD, when stated."),
				"month_days": agent.PropertyArray("Days of the month, when stated.",
					map[string]any{"type": "integer"}),
			}),
	}, []string{"action"}),
}

var fragmentProperties = map[string]any{
	"year":       agent.PropertyInt("Four-digit year, only when explicitly stated or implied by a full date."),
	"month":      agent.PropertyInt("Month 1-12."),
	"day":        agent.PropertyInt("Day of month 1-31."),
	"hour":       agent.PropertyInt("Hour 0-23, only when a clock time was given."),
	"minute":     agent.PropertyInt("Minute 0-59."),
	"named_time": agent.PropertyEnum("Coarse time of day.", []string{"morning", "noon", "afternoon", "evening", "night"}),
	"weekday":    weekdayProperty,
	"relative": agent.PropertyObject("Delta from the current time, e.g. 'in 2 weeks', 'yesterday'.",
		map[string]any{
			"direction": agent.PropertyEnum("Whether the delta points forward or backward.", []string{"future", "past"}),
			"unit":      agent.PropertyEnum("Delta unit.", []string{"minute", "hour", "day", "week", "month", "year"}),
			"magnitudes": agent.PropertyArray("Delta magnitudes; they are summed.",
				map[string]any{"type": "integer"}),
		}),
	"duration_minutes": agent.PropertyInt("Explicit duration in minutes, when stated."),
}

// recordDatetimeTool captures partial date/time information as a fragment,
// never as a resolved instant: resolution happens deterministically in code.
var recordDatetimeTool = agent.Tool{
	Name: datetimeToolName,
	Description: `Records any date or time information in the message as partial fields.
Do NOT resolve relative phrases yourself: "next Tuesday" becomes weekday=tuesday with
relative direction=future, not a concrete date. Call this once when the message carries
any temporal information; skip it entirely when there is none. Use "end" for the far
side of an explicit range ("between Monday and Friday").`,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"start": agent.PropertyObject("The (start of the) referenced time.", fragmentProperties),
		"end":   agent.PropertyObject("The end of the referenced range, when one was given.", fragmentProperties),
	}, []string{"start"}),
}

// intentPayload mirrors recordIntentTool's schema. Unknown fields the model
// invents are ignored by the JSON round-trip, not rejected.
type intentPayload struct {
	Action         string            `json:"action"`
	Title          string            `json:"title"`
	Summary        string            `json:"summary"`
	Description    string            `json:"description"`
	Priority       *int              `json:"priority"`
	TaskList       []string          `json:"task_list"`
	PreferredTimes []preferredTimeIn `json:"preferred_times"`
	Recurrence     *recurrenceIn     `json:"recurrence"`

	// Datetime is only present in the text-JSON fallback path, where the
	// model answered with one combined object instead of tool calls.
	Datetime *datetimePayload `json:"datetime"`
}

type preferredTimeIn struct {
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type recurrenceIn struct {
	Frequency string   `json:"frequency"`
	Interval  int      `json:"interval"`
	Weekdays  []string `json:"weekdays"`
	Count     int      `json:"count"`
	UntilDate string   `json:"until_date"`
	MonthDays []int    `json:"month_days"`
}

type datetimePayload struct {
	Start *fragmentIn `json:"start"`
	End   *fragmentIn `json:"end"`
}

type fragmentIn struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	Hour      *int   `json:"hour"`
	Minute    *int   `json:"minute"`
	NamedTime string `json:"named_time"`
	Weekday   string `json:"weekday"`
	Relative  *struct {
		Direction  string `json:"direction"`
		Unit       string `json:"unit"`
		Magnitudes []int  `json:"magnitudes"`
	} `json:"relative"`
	DurationMinutes int `json:"duration_minutes"`
}

// decodePayload round-trips a tool input map through JSON into dst, dropping
// any fields outside the declared schema.
func decodePayload(input map[string]any, dst any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal tool input: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("tool input does not match schema: %w", err)
	}
	return nil
}

func (p *intentPayload) toIntent() *Intent {
	intent := &Intent{
		Action: normalizeAction(p.Action),
		Body: slots.Body{
			Title:       strings.TrimSpace(p.Title),
			Summary:     strings.TrimSpace(p.Summary),
			Description: strings.TrimSpace(p.Description),
			Priority:    p.Priority,
			TaskList:    p.TaskList,
		},
	}

	for _, pt := range p.PreferredTimes {
		pref := slots.TimePreference{StartTime: pt.StartTime, EndTime: pt.EndTime}
		if idx, ok := weekdayIndex[strings.ToLower(pt.Weekday)]; ok {
			day := idx
			pref.Weekday = &day
		}
		intent.Body.PreferredTimes = append(intent.Body.PreferredTimes, pref)
	}

	if r := p.Recurrence; r != nil && r.Frequency != "" {
		intent.Body.Recurrence = temporal.BuildRecurrenceRule(
			r.Frequency, r.Interval, r.Weekdays, r.Count, r.UntilDate, r.MonthDays)
	}

	if p.Datetime != nil {
		intent.Start = p.Datetime.Start.toFragment()
		intent.End = p.Datetime.End.toFragment()
	}

	return intent
}

func (f *fragmentIn) toFragment() *temporal.Fragment {
	if f == nil {
		return nil
	}

	frag := &temporal.Fragment{
		Year:            f.Year,
		Month:           f.Month,
		Day:             f.Day,
		Hour:            f.Hour,
		Minute:          f.Minute,
		NamedTime:       f.NamedTime,
		DurationMinutes: f.DurationMinutes,
	}
	if idx, ok := weekdayIndex[strings.ToLower(f.Weekday)]; ok {
		day := idx
		frag.Weekday = &day
	}
	if f.Relative != nil {
		frag.Relative = &temporal.Relative{
			Direction:  temporal.Direction(f.Relative.Direction),
			Unit:       temporal.Unit(f.Relative.Unit),
			Magnitudes: f.Relative.Magnitudes,
		}
	}
	if frag.IsZero() {
		return nil
	}
	return frag
}

func normalizeAction(s string) Action {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range KnownActions {
		if string(a) == known {
			return a
		}
	}
	return ActionUnknown
}

package skill

import (
	"context"
	"fmt"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/slots"
	"github.com/adilevin/donna/internal/store"
)

// AddPreferredTime attaches preferred-time rules to an event. Each rule is an
// optional weekday plus an HH:MM window.
type AddPreferredTime struct {
	deps Deps
}

func NewAddPreferredTime(deps Deps) *AddPreferredTime {
	return &AddPreferredTime{deps: deps}
}

func (s *AddPreferredTime) Name() string           { return "add-preferred-time" }
func (s *AddPreferredTime) Action() extract.Action { return extract.ActionAddPreferredTime }
func (s *AddPreferredTime) NeedsEvent() bool       { return true }

func (s *AddPreferredTime) Declaration() slots.Declaration {
	return slots.Declaration{
		Groups: []slots.Group{
			{
				Prompt: "Which event should the preferred time apply to?",
				AnyOf:  []slots.Field{slots.FieldTitle, slots.FieldSummary},
			},
			{
				Prompt: "What time window do you prefer? For example \"Mondays 09:00-11:00\".",
				AnyOf:  []slots.Field{slots.FieldPreferredTimes},
			},
		},
	}
}

func (s *AddPreferredTime) Execute(ctx context.Context, req Request) (string, error) {
	event, err := s.deps.loadEvent(ctx, req.UserID, req.EventID)
	if err != nil {
		return "", err
	}

	for _, pref := range req.Body.PreferredTimes {
		pref := pref
		if err := withRetry(ctx, "add time preference", func() error {
			_, err := s.deps.Store.AddTimePreference(event.ID, pref.Weekday, pref.StartTime, pref.EndTime)
			return err
		}); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("Added %d preferred time rule(s) to %q.", len(req.Body.PreferredTimes), event.Title), nil
}

// RemovePreferredTime deletes the stored rules that match the requested ones.
// A stored rule matches a requested rule when both have the same weekday
// (including both being any-day) and the same start time. Rules that merely
// overlap the requested window are left alone.
type RemovePreferredTime struct {
	deps Deps
}

func NewRemovePreferredTime(deps Deps) *RemovePreferredTime {
	return &RemovePreferredTime{deps: deps}
}

func (s *RemovePreferredTime) Name() string           { return "remove-preferred-time" }
func (s *RemovePreferredTime) Action() extract.Action { return extract.ActionRemovePreferredTime }
func (s *RemovePreferredTime) NeedsEvent() bool       { return true }

func (s *RemovePreferredTime) Declaration() slots.Declaration {
	return slots.Declaration{
		Groups: []slots.Group{
			{
				Prompt: "Which event should I remove the preferred time from?",
				AnyOf:  []slots.Field{slots.FieldTitle, slots.FieldSummary},
			},
			{
				Prompt: "Which time window should I remove?",
				AnyOf:  []slots.Field{slots.FieldPreferredTimes},
			},
		},
	}
}

func (s *RemovePreferredTime) Execute(ctx context.Context, req Request) (string, error) {
	event, err := s.deps.loadEvent(ctx, req.UserID, req.EventID)
	if err != nil {
		return "", err
	}

	var existing []store.TimePreferenceRule
	if err := withRetry(ctx, "list time preferences", func() error {
		var err error
		existing, err = s.deps.Store.ListTimePreferences(event.ID)
		return err
	}); err != nil {
		return "", err
	}

	removed := 0
	for _, rule := range existing {
		if !matchesAnyPreference(rule, req.Body.PreferredTimes) {
			continue
		}
		rule := rule
		if err := withRetry(ctx, "delete time preference", func() error {
			return s.deps.Store.DeleteTimePreference(rule.ID)
		}); err != nil {
			return "", err
		}
		removed++
	}

	if removed == 0 {
		return fmt.Sprintf("No preferred time rules on %q matched, so nothing was removed.", event.Title), nil
	}
	return fmt.Sprintf("Removed %d preferred time rule(s) from %q.", removed, event.Title), nil
}

func matchesAnyPreference(rule store.TimePreferenceRule, wanted []slots.TimePreference) bool {
	for _, w := range wanted {
		if sameWeekday(rule.Weekday, w.Weekday) && rule.StartTime == w.StartTime {
			return true
		}
	}
	return false
}

func sameWeekday(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

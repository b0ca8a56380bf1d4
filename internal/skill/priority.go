package skill

import (
	"context"
	"fmt"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/slots"
)

// UpdatePriority pins an event to a user-chosen priority. Only the priority
// and modifiable flags are touched; a pinned priority is marked
// non-modifiable so automated rescheduling leaves it alone.
type UpdatePriority struct {
	deps Deps
}

func NewUpdatePriority(deps Deps) *UpdatePriority {
	return &UpdatePriority{deps: deps}
}

func (s *UpdatePriority) Name() string           { return "update-priority" }
func (s *UpdatePriority) Action() extract.Action { return extract.ActionUpdatePriority }
func (s *UpdatePriority) NeedsEvent() bool       { return true }

func (s *UpdatePriority) Declaration() slots.Declaration {
	return slots.Declaration{
		Groups: []slots.Group{
			{
				Prompt: "Which event should I change the priority of?",
				AnyOf:  []slots.Field{slots.FieldTitle, slots.FieldSummary},
			},
			{
				Prompt: "What priority should it have? Any number from 0 up works.",
				AnyOf:  []slots.Field{slots.FieldPriority},
			},
		},
	}
}

func (s *UpdatePriority) Execute(ctx context.Context, req Request) (string, error) {
	event, err := s.deps.loadEvent(ctx, req.UserID, req.EventID)
	if err != nil {
		return "", err
	}

	priority := *req.Body.Priority
	if err := withRetry(ctx, "update event priority", func() error {
		return s.deps.Store.SetEventPriority(req.UserID, event.ID, priority, false)
	}); err != nil {
		return "", err
	}

	return fmt.Sprintf("Set the priority of %q to %d.", event.Title, priority), nil
}

// DeletePriority resets an event's priority to the default and makes it
// modifiable again.
type DeletePriority struct {
	deps Deps
}

func NewDeletePriority(deps Deps) *DeletePriority {
	return &DeletePriority{deps: deps}
}

func (s *DeletePriority) Name() string           { return "delete-priority" }
func (s *DeletePriority) Action() extract.Action { return extract.ActionDeletePriority }
func (s *DeletePriority) NeedsEvent() bool       { return true }

func (s *DeletePriority) Declaration() slots.Declaration {
	return slots.Declaration{
		Groups: []slots.Group{
			{
				Prompt: "Which event should I clear the priority on?",
				AnyOf:  []slots.Field{slots.FieldTitle, slots.FieldSummary},
			},
		},
	}
}

func (s *DeletePriority) Execute(ctx context.Context, req Request) (string, error) {
	event, err := s.deps.loadEvent(ctx, req.UserID, req.EventID)
	if err != nil {
		return "", err
	}

	if err := withRetry(ctx, "clear event priority", func() error {
		return s.deps.Store.SetEventPriority(req.UserID, event.ID, 0, true)
	}); err != nil {
		return "", err
	}

	return fmt.Sprintf("Cleared the priority of %q.", event.Title), nil
}

package skill

import (
	"context"
	"fmt"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/slots"
)

// DeleteEvent removes one calendar event and everything derived from it.
type DeleteEvent struct {
	deps Deps
}

func NewDeleteEvent(deps Deps) *DeleteEvent {
	return &DeleteEvent{deps: deps}
}

func (s *DeleteEvent) Name() string           { return "delete-event" }
func (s *DeleteEvent) Action() extract.Action { return extract.ActionDeleteEvent }
func (s *DeleteEvent) NeedsEvent() bool       { return true }

func (s *DeleteEvent) Declaration() slots.Declaration {
	return slots.Declaration{
		Groups: []slots.Group{
			{
				Prompt: "Which event should I delete? A title or short summary helps me find it.",
				AnyOf:  []slots.Field{slots.FieldTitle, slots.FieldSummary},
			},
		},
	}
}

func (s *DeleteEvent) Execute(ctx context.Context, req Request) (string, error) {
	event, err := s.deps.loadEvent(ctx, req.UserID, req.EventID)
	if err != nil {
		return "", err
	}

	if err := s.deps.deleteEventRecord(ctx, event); err != nil {
		return "", err
	}

	s.deps.Logger.Info().
		Int64("user_id", req.UserID).
		Int64("event_id", event.ID).
		Msg("event deleted")

	return fmt.Sprintf("Successfully deleted event %q.", event.Title), nil
}

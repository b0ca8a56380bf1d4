package skill

import (
	"context"
	"fmt"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/slots"
)

// DeleteTask removes a task-backed event: the linked task first, then the
// event, with the same index-first ordering as event deletion.
type DeleteTask struct {
	deps Deps
}

func NewDeleteTask(deps Deps) *DeleteTask {
	return &DeleteTask{deps: deps}
}

func (s *DeleteTask) Name() string           { return "delete-task" }
func (s *DeleteTask) Action() extract.Action { return extract.ActionDeleteTask }
func (s *DeleteTask) NeedsEvent() bool       { return true }

func (s *DeleteTask) Declaration() slots.Declaration {
	return slots.Declaration{
		Groups: []slots.Group{
			{
				Prompt: "Which task should I delete? A title or short summary helps me find it.",
				AnyOf:  []slots.Field{slots.FieldTitle, slots.FieldSummary},
			},
		},
	}
}

func (s *DeleteTask) Execute(ctx context.Context, req Request) (string, error) {
	event, err := s.deps.loadEvent(ctx, req.UserID, req.EventID)
	if err != nil {
		return "", err
	}

	taskDeleted := false
	if event.TaskID != nil {
		taskID := *event.TaskID
		if err := withRetry(ctx, "delete linked task", func() error {
			return s.deps.Store.DeleteTask(req.UserID, taskID)
		}); err != nil {
			return "", err
		}
		taskDeleted = true
	}

	if err := s.deps.deleteEventRecord(ctx, event); err != nil {
		return "", err
	}

	s.deps.Logger.Info().
		Int64("user_id", req.UserID).
		Int64("event_id", event.ID).
		Bool("task_deleted", taskDeleted).
		Msg("task event deleted")

	if taskDeleted {
		return fmt.Sprintf("Successfully deleted task %q and its event.", event.Title), nil
	}
	return fmt.Sprintf("Successfully deleted event %q (it had no linked task).", event.Title), nil
}

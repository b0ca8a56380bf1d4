package skill

import (
	"context"
	"fmt"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/slots"
	"github.com/adilevin/donna/internal/store"
)

// QueryNextEvent answers "what's next on my calendar". It is read-only and
// needs no slots and no event disambiguation.
type QueryNextEvent struct {
	deps Deps
}

func NewQueryNextEvent(deps Deps) *QueryNextEvent {
	return &QueryNextEvent{deps: deps}
}

func (s *QueryNextEvent) Name() string           { return "query-next-event" }
func (s *QueryNextEvent) Action() extract.Action { return extract.ActionQueryNextEvent }
func (s *QueryNextEvent) NeedsEvent() bool       { return false }

func (s *QueryNextEvent) Declaration() slots.Declaration {
	return slots.Declaration{}
}

func (s *QueryNextEvent) Execute(ctx context.Context, req Request) (string, error) {
	var event *store.Event
	if err := withRetry(ctx, "query next event", func() error {
		var err error
		event, err = s.deps.Store.NextEventAfter(req.UserID, req.Now)
		return err
	}); err != nil {
		return "", err
	}

	if event == nil {
		return "You have no upcoming events.", nil
	}

	loc := req.Location
	if loc == nil {
		loc = req.Now.Location()
	}
	when := event.StartTime.In(loc).Format("Monday, Jan 2 at 15:04")
	return fmt.Sprintf("Your next event is %q on %s.", event.Title, when), nil
}

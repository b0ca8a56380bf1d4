package skill

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/adilevin/donna/internal/gcal"
	"github.com/adilevin/donna/internal/semantic"
	"github.com/adilevin/donna/internal/store"
)

// RemoteCalendar is the external calendar provider surface executors use.
// *gcal.Client satisfies it; tests substitute a fake.
type RemoteCalendar interface {
	DeleteEvent(calendarID, eventID string) error
	IsAuthenticated() bool
}

// Deps are the collaborators shared by every executor.
type Deps struct {
	Store    *store.DB
	Index    semantic.Index
	Calendar RemoteCalendar // nil disables remote calendar sync
	Logger   zerolog.Logger
}

// loadEvent fetches the target event, translating both a zero id and a
// missing row into ErrEventNotFound before any mutation is attempted.
func (d Deps) loadEvent(ctx context.Context, userID, eventID int64) (*store.Event, error) {
	if eventID == 0 {
		return nil, semantic.ErrEventNotFound
	}

	var event *store.Event
	err := withRetry(ctx, "load event", func() error {
		var err error
		event, err = d.Store.GetEvent(userID, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, semantic.ErrEventNotFound
	}
	return event, nil
}

// deleteEventRecord removes an event and everything derived from it, in
// index-first order: the vector point and time-preference rules go before
// the record itself, so a crash mid-way never leaves an index entry pointing
// at a deleted record.
func (d Deps) deleteEventRecord(ctx context.Context, event *store.Event) error {
	if err := withRetry(ctx, "remove event from search index", func() error {
		return d.Index.Delete(ctx, event.ID)
	}); err != nil {
		return err
	}

	if err := withRetry(ctx, "remove time preferences", func() error {
		return d.Store.DeleteTimePreferencesForEvent(event.ID)
	}); err != nil {
		return err
	}

	if event.GoogleEventID != nil && d.Calendar != nil && d.Calendar.IsAuthenticated() {
		if err := withRetry(ctx, "delete remote calendar event", func() error {
			err := d.Calendar.DeleteEvent("", *event.GoogleEventID)
			if errors.Is(err, gcal.ErrEventNotFound) {
				// Already gone remotely; local deletion proceeds.
				return nil
			}
			return err
		}); err != nil {
			return err
		}
	}

	return withRetry(ctx, "delete event record", func() error {
		return d.Store.DeleteEvent(event.UserID, event.ID)
	})
}

package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/semantic"
	"github.com/adilevin/donna/internal/skill"
	"github.com/adilevin/donna/internal/slots"
	"github.com/adilevin/donna/internal/store"
	"github.com/adilevin/donna/internal/temporal"
)

type fakeExtractor struct {
	queue    []*extract.Intent
	err      error
	requests []extract.Request
}

func (f *fakeExtractor) ExtractIntent(ctx context.Context, req extract.Request) (*extract.Intent, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queue) == 0 {
		return &extract.Intent{Action: extract.ActionUnknown}, nil
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next, nil
}

type fakeResolver struct {
	eventID    int64
	err        error
	calls      int
	boundaries []temporal.Boundary
}

func (f *fakeResolver) ResolveEvent(ctx context.Context, userID int64, titleFragment string, boundary temporal.Boundary) (int64, error) {
	f.calls++
	f.boundaries = append(f.boundaries, boundary)
	if f.err != nil {
		return 0, f.err
	}
	return f.eventID, nil
}

type noopIndex struct{}

func (noopIndex) Search(ctx context.Context, userID int64, vector []float32, boundary temporal.Boundary, limit int) ([]semantic.Match, error) {
	return nil, nil
}
func (noopIndex) Upsert(ctx context.Context, event semantic.IndexedEvent, vector []float32) error {
	return nil
}
func (noopIndex) Delete(ctx context.Context, eventID int64) error { return nil }

type failingIndex struct{}

func (failingIndex) Search(ctx context.Context, userID int64, vector []float32, boundary temporal.Boundary, limit int) ([]semantic.Match, error) {
	return nil, nil
}
func (failingIndex) Upsert(ctx context.Context, event semantic.IndexedEvent, vector []float32) error {
	return nil
}
func (failingIndex) Delete(ctx context.Context, eventID int64) error {
	return errors.New("index unavailable")
}

func newTestController(t *testing.T, db *store.DB, extractor *fakeExtractor, resolver *fakeResolver, index semantic.Index) *Controller {
	t.Helper()

	deps := skill.Deps{Store: db, Index: index, Logger: zerolog.Nop()}
	registry := skill.NewRegistry()
	registry.MustRegister(skill.NewDeleteEvent(deps))
	registry.MustRegister(skill.NewDeleteTask(deps))
	registry.MustRegister(skill.NewUpdatePriority(deps))
	registry.MustRegister(skill.NewDeletePriority(deps))
	registry.MustRegister(skill.NewAddPreferredTime(deps))
	registry.MustRegister(skill.NewRemovePreferredTime(deps))
	registry.MustRegister(skill.NewQueryNextEvent(deps))

	return NewController(extractor, resolver, registry, db, zerolog.Nop())
}

func TestHandleTurnDeleteEventTwoTurns(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	event := store.CreateTestEvent(t, db, user.ID, "Budget sync", now.Add(24*time.Hour))

	extractor := &fakeExtractor{queue: []*extract.Intent{
		{Action: extract.ActionDeleteEvent},
		{Action: extract.ActionUnknown, Body: slots.Body{Title: "budget sync"}},
	}}
	resolver := &fakeResolver{eventID: event.ID}
	controller := newTestController(t, db, extractor, resolver, noopIndex{})

	// Turn 1: no event reference yet, so the controller asks for one and
	// never searches.
	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-1", UserID: user.ID, Timezone: "UTC", Now: now,
		Message: "delete my meeting",
	})
	assert.Equal(t, skill.StatusMissingFields, resp.Status)
	require.NotNil(t, resp.Missing)
	assert.NotEmpty(t, resp.Message)
	assert.Zero(t, resolver.calls)

	_, hasCarry, err := db.GetCarryState("conv-1")
	require.NoError(t, err)
	assert.True(t, hasCarry)

	// Turn 2: the answer supplies the title; the carried action completes.
	resp = controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-1", UserID: user.ID, Timezone: "UTC", Now: now,
		Message: "the budget sync",
	})
	assert.Equal(t, skill.StatusCompleted, resp.Status)
	assert.Contains(t, strings.ToLower(resp.Message), "successfully deleted event")
	assert.Equal(t, 1, resolver.calls)

	// The prior turn was handed to extraction verbatim.
	secondReq := extractor.requests[1]
	assert.Equal(t, "delete my meeting", secondReq.PriorUserText)
	assert.NotEmpty(t, secondReq.PriorAssistantText)

	got, err := db.GetEvent(user.ID, event.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, hasCarry, err = db.GetCarryState("conv-1")
	require.NoError(t, err)
	assert.False(t, hasCarry)
}

func TestHandleTurnEventNotFound(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	event := store.CreateTestEvent(t, db, user.ID, "Unrelated", now.Add(time.Hour))

	extractor := &fakeExtractor{queue: []*extract.Intent{
		{Action: extract.ActionDeleteEvent, Body: slots.Body{Title: "pottery class"}},
	}}
	resolver := &fakeResolver{err: semantic.ErrEventNotFound}
	controller := newTestController(t, db, extractor, resolver, noopIndex{})

	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-nf", UserID: user.ID, Timezone: "UTC", Now: now,
		Message: "delete the pottery class",
	})
	assert.Equal(t, skill.StatusEventNotFound, resp.Status)

	// Nothing was mutated and no carry state lingers.
	got, err := db.GetEvent(user.ID, event.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, hasCarry, err := db.GetCarryState("conv-nf")
	require.NoError(t, err)
	assert.False(t, hasCarry)
}

func TestHandleTurnExtractionFailure(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)

	extractor := &fakeExtractor{err: extract.ErrExtraction}
	controller := newTestController(t, db, extractor, &fakeResolver{}, noopIndex{})

	require.NoError(t, db.PutCarryState("conv-x", user.ID, `{"action":"delete-event"}`))

	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-x", UserID: user.ID, Timezone: "UTC", Now: time.Now(),
		Message: "asdf gibberish",
	})
	assert.Equal(t, skill.StatusPending, resp.Status)
	assert.Contains(t, strings.ToLower(resp.Message), "rephrase")

	// A failed extraction leaves the in-progress invocation untouched.
	_, hasCarry, err := db.GetCarryState("conv-x")
	require.NoError(t, err)
	assert.True(t, hasCarry)
}

func TestHandleTurnBackendFailurePreservesCarry(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	event := store.CreateTestEvent(t, db, user.ID, "Budget sync", now.Add(time.Hour))

	extractor := &fakeExtractor{queue: []*extract.Intent{
		{Action: extract.ActionDeleteEvent},
		{Action: extract.ActionUnknown, Body: slots.Body{Title: "budget sync"}},
		{Action: extract.ActionUnknown, Body: slots.Body{}},
	}}
	resolver := &fakeResolver{eventID: event.ID}
	controller := newTestController(t, db, extractor, resolver, failingIndex{})

	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-b", UserID: user.ID, Timezone: "UTC", Now: now,
		Message: "delete my meeting",
	})
	require.Equal(t, skill.StatusMissingFields, resp.Status)

	resp = controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-b", UserID: user.ID, Timezone: "UTC", Now: now,
		Message: "the budget sync",
	})
	assert.Equal(t, skill.StatusPending, resp.Status)

	// The invocation survives the transient failure, so a bare retry works
	// once the backend recovers.
	payload, hasCarry, err := db.GetCarryState("conv-b")
	require.NoError(t, err)
	assert.True(t, hasCarry)
	assert.Contains(t, payload, "delete-event")

	got, err := db.GetEvent(user.ID, event.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestHandleTurnUnknownAction(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)

	extractor := &fakeExtractor{queue: []*extract.Intent{
		{Action: extract.ActionUnknown},
	}}
	controller := newTestController(t, db, extractor, &fakeResolver{}, noopIndex{})

	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-u", UserID: user.ID, Timezone: "UTC", Now: time.Now(),
		Message: "sing me a song",
	})
	assert.Equal(t, skill.StatusPending, resp.Status)

	_, hasCarry, err := db.GetCarryState("conv-u")
	require.NoError(t, err)
	assert.False(t, hasCarry)
}

func TestHandleTurnQueryNextEventSkipsResolution(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.CreateTestEvent(t, db, user.ID, "Standup", now.Add(30*time.Minute))

	extractor := &fakeExtractor{queue: []*extract.Intent{
		{Action: extract.ActionQueryNextEvent},
	}}
	resolver := &fakeResolver{}
	controller := newTestController(t, db, extractor, resolver, noopIndex{})

	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-q", UserID: user.ID, Timezone: "UTC", Now: now,
		Message: "what's next on my calendar?",
	})
	assert.Equal(t, skill.StatusCompleted, resp.Status)
	assert.Contains(t, resp.Message, `"Standup"`)
	assert.Zero(t, resolver.calls)
}

func TestHandleTurnBoundaryFromFragments(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	event := store.CreateTestEvent(t, db, user.ID, "Dentist", now.Add(24*time.Hour))

	extractor := &fakeExtractor{queue: []*extract.Intent{
		{
			Action: extract.ActionDeleteEvent,
			Body:   slots.Body{Title: "dentist"},
			Start:  &temporal.Fragment{Year: 2025, Month: 3, Day: 11},
		},
	}}
	resolver := &fakeResolver{eventID: event.ID}
	controller := newTestController(t, db, extractor, resolver, noopIndex{})

	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-f", UserID: user.ID, Timezone: "UTC", Now: now,
		Message: "delete tomorrow's dentist appointment",
	})
	require.Equal(t, skill.StatusCompleted, resp.Status)

	require.Len(t, resolver.boundaries, 1)
	boundary := resolver.boundaries[0]
	assert.Equal(t, 2025, boundary.Start.Year())
	assert.Equal(t, time.March, boundary.Start.Month())
	assert.Equal(t, 11, boundary.Start.Day())
	// No end fragment: the default forward window applies.
	assert.Equal(t, now.Add(28*24*time.Hour), boundary.End)
}

func TestHandleTurnRemovePreferredTimeEndToEnd(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	event := store.CreateTestEvent(t, db, user.ID, "Workout", now.Add(time.Hour))

	monday, wednesday := 1, 3
	_, err := db.AddTimePreference(event.ID, &monday, "07:00", "08:00")
	require.NoError(t, err)
	_, err = db.AddTimePreference(event.ID, &wednesday, "07:00", "08:00")
	require.NoError(t, err)

	extractor := &fakeExtractor{queue: []*extract.Intent{
		{
			Action: extract.ActionRemovePreferredTime,
			Body: slots.Body{
				Title: "workout",
				PreferredTimes: []slots.TimePreference{
					{Weekday: &monday, StartTime: "07:00", EndTime: "08:00"},
				},
			},
		},
	}}
	resolver := &fakeResolver{eventID: event.ID}
	controller := newTestController(t, db, extractor, resolver, noopIndex{})

	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-p", UserID: user.ID, Timezone: "UTC", Now: now,
		Message: "stop preferring Monday mornings for my workout",
	})
	require.Equal(t, skill.StatusCompleted, resp.Status)

	// Only the Monday rule is gone.
	prefs, err := db.ListTimePreferences(event.ID)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	require.NotNil(t, prefs[0].Weekday)
	assert.Equal(t, wednesday, *prefs[0].Weekday)
}

func TestCarryStateRoundTrip(t *testing.T) {
	monday := 1
	original := CarryState{
		Action: extract.ActionUpdatePriority,
		Body: slots.Body{
			Title:    "budget sync",
			Priority: store.IntPtr(0),
		},
		Start:             &temporal.Fragment{Year: 2025, Month: 3, Day: 11, Weekday: &monday},
		LastUserText:      "change the priority",
		LastAssistantText: "What priority should it have?",
	}

	payload, err := encodeCarry(original)
	require.NoError(t, err)

	decoded, err := decodeCarry(payload)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	// Priority 0 survives the round trip as an explicit value.
	require.NotNil(t, decoded.Body.Priority)
	assert.Equal(t, 0, *decoded.Body.Priority)
}

func TestHandleTurnCorruptCarryStartsFresh(t *testing.T) {
	db := store.NewTestDB(t)
	user := store.CreateTestUser(t, db)

	require.NoError(t, db.PutCarryState("conv-c", user.ID, "{not json"))

	extractor := &fakeExtractor{queue: []*extract.Intent{
		{Action: extract.ActionQueryNextEvent},
	}}
	controller := newTestController(t, db, extractor, &fakeResolver{}, noopIndex{})

	resp := controller.HandleTurn(context.Background(), Turn{
		ConversationID: "conv-c", UserID: user.ID, Timezone: "UTC", Now: time.Now(),
		Message: "what's next?",
	})
	assert.Equal(t, skill.StatusCompleted, resp.Status)
}

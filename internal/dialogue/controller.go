package dialogue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/semantic"
	"github.com/adilevin/donna/internal/skill"
	"github.com/adilevin/donna/internal/slots"
	"github.com/adilevin/donna/internal/temporal"
	"github.com/adilevin/donna/internal/timeutil"
)

const (
	msgRephrase      = "I couldn't make sense of that. Could you rephrase?"
	msgUnknownAction = "I'm not sure what you'd like me to do. I can delete events and tasks, manage priorities and preferred times, or tell you what's next."
	msgEventNotFound = "I couldn't find an event matching that description."
	msgBackendDown   = "Something went wrong on my side while handling that. Your request is kept; please try again in a moment."
)

// intentExtractor produces a structured intent from one utterance.
type intentExtractor interface {
	ExtractIntent(ctx context.Context, req extract.Request) (*extract.Intent, error)
}

// eventResolver maps a fuzzy event reference to a single event id.
type eventResolver interface {
	ResolveEvent(ctx context.Context, userID int64, titleFragment string, boundary temporal.Boundary) (int64, error)
}

// carryStore persists in-progress invocations between turns. *store.DB
// satisfies it.
type carryStore interface {
	GetCarryState(conversationID string) (string, bool, error)
	PutCarryState(conversationID string, userID int64, payload string) error
	DeleteCarryState(conversationID string) error
}

// Turn is one inbound user message with its conversation context.
type Turn struct {
	ConversationID string
	UserID         int64
	Timezone       string
	Now            time.Time
	Message        string
}

// Controller runs the turn pipeline: extract, merge with carried state,
// validate required fields, disambiguate the target event, execute. Turns
// within one conversation are serialized; distinct conversations proceed
// concurrently.
type Controller struct {
	extractor intentExtractor
	resolver  eventResolver
	skills    *skill.Registry
	carries   carryStore
	logger    zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewController(extractor intentExtractor, resolver eventResolver, skills *skill.Registry, carries carryStore, logger zerolog.Logger) *Controller {
	return &Controller{
		extractor: extractor,
		resolver:  resolver,
		skills:    skills,
		carries:   carries,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (c *Controller) conversationLock(id string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[id] = lock
	}
	return lock
}

// HandleTurn processes one user message and produces exactly one assistant
// response. Carry state is only mutated on a definitive outcome: a prompt for
// a missing field persists it, completion and event-not-found discard it, and
// transient failures leave it untouched.
func (c *Controller) HandleTurn(ctx context.Context, turn Turn) skill.Response {
	lock := c.conversationLock(turn.ConversationID)
	lock.Lock()
	defer lock.Unlock()

	loc, _ := timeutil.ResolveLocation(turn.Timezone)
	now := turn.Now
	if now.IsZero() {
		now = time.Now().In(loc)
	}

	carry, hasCarry, err := c.loadCarry(turn.ConversationID)
	if err != nil {
		c.logger.Error().Err(err).Str("conversation_id", turn.ConversationID).Msg("failed to load carry state")
		return skill.Response{Status: skill.StatusPending, Message: msgBackendDown}
	}

	intent, err := c.extractor.ExtractIntent(ctx, extract.Request{
		UserText:           turn.Message,
		Now:                now,
		Timezone:           loc.String(),
		PriorUserText:      carry.LastUserText,
		PriorAssistantText: carry.LastAssistantText,
	})
	if err != nil {
		if errors.Is(err, extract.ErrExtraction) {
			return skill.Response{Status: skill.StatusPending, Message: msgRephrase}
		}
		c.logger.Error().Err(err).Msg("intent extraction failed")
		return skill.Response{Status: skill.StatusPending, Message: msgBackendDown}
	}

	// A follow-up turn answering a prompt often carries no action of its
	// own; the carried action stands until the invocation resolves.
	action := intent.Action
	if (action == "" || action == extract.ActionUnknown) && hasCarry {
		action = carry.Action
	}
	if action == "" || action == extract.ActionUnknown {
		return skill.Response{Status: skill.StatusPending, Message: msgUnknownAction}
	}

	sk, ok := c.skills.Get(action)
	if !ok {
		return skill.Response{Status: skill.StatusPending, Message: msgUnknownAction}
	}

	merged := slots.Merge(carry.Body, intent.Body)
	start, end := carry.Start, carry.End
	if start == nil || start.IsZero() {
		start = intent.Start
	}
	if end == nil || end.IsZero() {
		end = intent.End
	}
	if start != nil && start.HasDate() {
		merged.HasDate = true
	}

	missing, err := slots.FindMissing(sk.Declaration(), merged)
	if err != nil {
		c.logger.Error().Err(err).Str("skill", sk.Name()).Msg("invalid skill declaration")
		return skill.Response{Status: skill.StatusPending, Message: msgBackendDown}
	}
	if missing != nil {
		next := CarryState{
			Action:            action,
			Body:              merged,
			Start:             start,
			End:               end,
			LastUserText:      turn.Message,
			LastAssistantText: missing.Prompt,
		}
		if err := c.saveCarry(ctx, turn.ConversationID, turn.UserID, next); err != nil {
			c.logger.Error().Err(err).Msg("failed to persist carry state")
			return skill.Response{Status: skill.StatusPending, Message: msgBackendDown}
		}
		return skill.Response{Status: skill.StatusMissingFields, Missing: missing, Message: missing.Prompt}
	}

	var eventID int64
	if sk.NeedsEvent() {
		boundary := temporal.ResolveBoundary(start, end, now, loc)
		reference := merged.Title
		if reference == "" {
			reference = merged.Summary
		}

		eventID, err = c.resolver.ResolveEvent(ctx, turn.UserID, reference, boundary)
		if errors.Is(err, semantic.ErrEventNotFound) {
			c.discardCarry(turn.ConversationID)
			return skill.Response{Status: skill.StatusEventNotFound, Message: msgEventNotFound}
		}
		if err != nil {
			c.logger.Error().Err(err).Msg("event disambiguation failed")
			return skill.Response{Status: skill.StatusPending, Message: msgBackendDown}
		}
	}

	message, err := sk.Execute(ctx, skill.Request{
		UserID:   turn.UserID,
		EventID:  eventID,
		Body:     merged,
		Now:      now,
		Location: loc,
	})
	if errors.Is(err, semantic.ErrEventNotFound) {
		c.discardCarry(turn.ConversationID)
		return skill.Response{Status: skill.StatusEventNotFound, Message: msgEventNotFound}
	}
	if err != nil {
		var backendErr *skill.BackendError
		if errors.As(err, &backendErr) {
			c.logger.Warn().Err(err).Str("skill", sk.Name()).Msg("transient backend failure")
		} else {
			c.logger.Error().Err(err).Str("skill", sk.Name()).Msg("skill execution failed")
		}
		return skill.Response{Status: skill.StatusPending, Message: msgBackendDown}
	}

	c.discardCarry(turn.ConversationID)
	return skill.Response{Status: skill.StatusCompleted, Message: message}
}

func (c *Controller) loadCarry(conversationID string) (CarryState, bool, error) {
	payload, ok, err := c.carries.GetCarryState(conversationID)
	if err != nil || !ok {
		return CarryState{}, false, err
	}

	carry, err := decodeCarry(payload)
	if err != nil {
		// Corrupt state is unrecoverable; start the conversation fresh.
		c.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("discarding corrupt carry state")
		return CarryState{}, false, c.carries.DeleteCarryState(conversationID)
	}
	return carry, true, nil
}

func (c *Controller) saveCarry(ctx context.Context, conversationID string, userID int64, carry CarryState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := encodeCarry(carry)
	if err != nil {
		return err
	}
	return c.carries.PutCarryState(conversationID, userID, payload)
}

func (c *Controller) discardCarry(conversationID string) {
	if err := c.carries.DeleteCarryState(conversationID); err != nil {
		c.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to discard carry state")
	}
}

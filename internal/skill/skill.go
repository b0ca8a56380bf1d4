package skill

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/slots"
)

// Status is the outcome of one dialogue turn for a skill invocation.
type Status string

const (
	// StatusPending means the turn did not advance the invocation: a fresh
	// request that failed extraction, or a transient backend failure. Carry
	// state, when present, is preserved so the user can retry.
	StatusPending Status = "pending"

	StatusMissingFields Status = "missing_fields"
	StatusCompleted     Status = "completed"
	StatusEventNotFound Status = "event_not_found"
)

// Response is what a skill turn hands back to the dialogue controller.
type Response struct {
	Status  Status
	Missing *slots.Group // set when Status is StatusMissingFields
	Message string
}

// Request carries everything an executor needs for its single mutation.
type Request struct {
	UserID   int64
	EventID  int64 // zero when the skill needs no event
	Body     slots.Body
	Now      time.Time
	Location *time.Location
}

// Skill is one supported calendar action: its required fields and its
// final-step executor. Executors perform exactly one mutation class and
// report a human-readable result.
type Skill interface {
	Name() string
	Action() extract.Action
	Declaration() slots.Declaration

	// NeedsEvent reports whether the skill targets a single existing event
	// and therefore requires disambiguation before execution.
	NeedsEvent() bool

	Execute(ctx context.Context, req Request) (string, error)
}

// Registry stores skills by the extractor action that triggers them.
type Registry struct {
	mu     sync.RWMutex
	skills map[extract.Action]Skill
}

func NewRegistry() *Registry {
	return &Registry{skills: make(map[extract.Action]Skill)}
}

func (r *Registry) Register(s Skill) error {
	if s == nil {
		return fmt.Errorf("skill is nil")
	}
	if s.Action() == "" {
		return fmt.Errorf("skill action is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[s.Action()]; exists {
		return fmt.Errorf("skill already registered for action: %s", s.Action())
	}
	r.skills[s.Action()] = s
	return nil
}

// MustRegister registers a skill and panics on error.
func (r *Registry) MustRegister(s Skill) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(action extract.Action) (Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[action]
	return s, ok
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.skills))
	for _, s := range r.skills {
		names = append(names, s.Name())
	}
	sort.Strings(names)
	return names
}

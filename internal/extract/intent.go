package extract

import (
	"errors"
	"time"

	"github.com/adilevin/donna/internal/slots"
	"github.com/adilevin/donna/internal/temporal"
)

// ErrExtraction marks a model response that could not be parsed into the
// fixed intent schema. The dialogue controller translates it into a
// "please rephrase" message; it never reaches the user raw.
var ErrExtraction = errors.New("could not extract a structured intent")

// Action is the closed set of skill actions the extractor can produce.
type Action string

const (
	ActionDeleteEvent         Action = "delete-event"
	ActionDeleteTask          Action = "delete-task"
	ActionUpdatePriority      Action = "update-priority"
	ActionDeletePriority      Action = "delete-priority"
	ActionAddPreferredTime    Action = "add-preferred-time"
	ActionRemovePreferredTime Action = "remove-preferred-time"
	ActionQueryNextEvent      Action = "query-next-event"
	ActionUnknown             Action = "unknown"
)

// KnownActions lists every action the extractor may emit, for tool schemas.
var KnownActions = []string{
	string(ActionDeleteEvent),
	string(ActionDeleteTask),
	string(ActionUpdatePriority),
	string(ActionDeletePriority),
	string(ActionAddPreferredTime),
	string(ActionRemovePreferredTime),
	string(ActionQueryNextEvent),
	string(ActionUnknown),
}

// Intent is one turn's structured reading of the user's utterance: the action
// they want, the parameters they supplied, and the temporal fragments for the
// search window. Immutable once produced; superseding happens by merging.
type Intent struct {
	Action Action
	Body   slots.Body
	Start  *temporal.Fragment
	End    *temporal.Fragment
}

// Request carries one utterance plus the context needed to resolve it.
// PriorUserText and PriorAssistantText are included verbatim when the turn
// continues a missing-fields conversation, so references like "make it 5"
// can be resolved against what was previously said.
type Request struct {
	UserText           string
	Now                time.Time
	Timezone           string
	PriorUserText      string
	PriorAssistantText string
}

package dialogue

import (
	"encoding/json"
	"fmt"

	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/slots"
	"github.com/adilevin/donna/internal/temporal"
)

// CarryState is the in-progress invocation persisted between turns of a
// missing-fields conversation. It round-trips through JSON so a process
// restart does not lose the conversation.
type CarryState struct {
	Action extract.Action     `json:"action"`
	Body   slots.Body         `json:"body"`
	Start  *temporal.Fragment `json:"start,omitempty"`
	End    *temporal.Fragment `json:"end,omitempty"`

	// LastUserText and LastAssistantText are the previous turn verbatim, fed
	// back into extraction so replies like "make it 5" can be grounded.
	LastUserText      string `json:"last_user_text,omitempty"`
	LastAssistantText string `json:"last_assistant_text,omitempty"`
}

func encodeCarry(c CarryState) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode carry state: %w", err)
	}
	return string(raw), nil
}

func decodeCarry(payload string) (CarryState, error) {
	var c CarryState
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return CarryState{}, fmt.Errorf("failed to decode carry state: %w", err)
	}
	return c, nil
}

package extract

import (
	"bytes"
	"fmt"
	"time"
)

// systemPrompt steers the model toward schema-shaped extraction only.
const systemPrompt = `You are the intent extraction stage of a calendar assistant.

Your only job is to read ONE user message and record what it asks for, using the tools:

1. record_intent - ALWAYS call this once with the requested action and any parameters
   the user stated. Never invent parameters the user did not say.
2. record_datetime - call this once IF the message carries any date/time information,
   recording it as PARTIAL fields. Never resolve relative dates yourself; the system
   resolves them deterministically against the current time you are given.

## Rules

- Extract, don't chat. Do not answer the user or add commentary.
- When the message continues an earlier exchange (the prompt shows the previous turn),
  record only what the NEW message adds. Short replies like "make it 5" or "the budget
  review" answer the assistant's last question; map them onto the right parameter.
- A bare number after a question about priority is a priority.
- "Stop preferring X" style requests are remove-preferred-time with the times listed.
- Use action "unknown" when the message is not a supported calendar request.`

// buildUserPrompt assembles the turn context. Prior turns are included
// verbatim so the model can resolve elliptical answers.
func buildUserPrompt(req Request) string {
	var prompt bytes.Buffer

	prompt.WriteString("## Context\n\n")
	prompt.WriteString(fmt.Sprintf("Current date/time: %s\n", req.Now.Format(time.RFC3339)))
	prompt.WriteString(fmt.Sprintf("Current weekday: %s\n", req.Now.Weekday()))
	if req.Timezone != "" {
		prompt.WriteString(fmt.Sprintf("User timezone: %s\n", req.Timezone))
	}

	if req.PriorUserText != "" || req.PriorAssistantText != "" {
		prompt.WriteString("\n## Previous Turn (this message continues it)\n\n")
		if req.PriorUserText != "" {
			prompt.WriteString(fmt.Sprintf("User: %s\n", req.PriorUserText))
		}
		if req.PriorAssistantText != "" {
			prompt.WriteString(fmt.Sprintf("Assistant: %s\n", req.PriorAssistantText))
		}
	}

	prompt.WriteString("\n## New Message\n\n")
	prompt.WriteString(req.UserText)
	prompt.WriteString("\n\nRecord the intent (and date/time, if any) now.")

	return prompt.String()
}

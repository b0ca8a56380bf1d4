package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog"

	"github.com/adilevin/donna/internal/agent"
)

// extractionAgent is the slice of agent.Agent the extractor needs.
type extractionAgent interface {
	Extract(ctx context.Context, userMessage string) (*agent.Output, error)
	IsConfigured() bool
}

// Extractor turns raw user text into a structured Intent via the model.
// Model calls are never retried automatically; a failure surfaces at once.
type Extractor struct {
	agent  extractionAgent
	logger zerolog.Logger
}

// Config configures the extractor's underlying agent.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	Logger      zerolog.Logger
}

// New creates an extractor backed by the Anthropic API.
func New(cfg Config) *Extractor {
	return &Extractor{
		agent: agent.New(agent.Config{
			Name:         "intent-extractor",
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
			SystemPrompt: systemPrompt,
			Tools:        []agent.Tool{recordIntentTool, recordDatetimeTool},
		}),
		logger: cfg.Logger,
	}
}

// NewWithAgent creates an extractor over a custom agent, used in tests.
func NewWithAgent(a extractionAgent, logger zerolog.Logger) *Extractor {
	return &Extractor{agent: a, logger: logger}
}

// IsConfigured reports whether the underlying model client has credentials.
func (e *Extractor) IsConfigured() bool {
	return e.agent != nil && e.agent.IsConfigured()
}

// ExtractIntent extracts the structured intent and temporal fragments from
// one utterance. Failures to produce schema-shaped output wrap ErrExtraction.
func (e *Extractor) ExtractIntent(ctx context.Context, req Request) (*Intent, error) {
	if strings.TrimSpace(req.UserText) == "" {
		return nil, fmt.Errorf("%w: empty utterance", ErrExtraction)
	}

	out, err := e.agent.Extract(ctx, buildUserPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	intent, err := e.parseOutput(out)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("action", string(intent.Action)).
		Int("input_tokens", out.Usage.InputTokens).
		Int("output_tokens", out.Usage.OutputTokens).
		Msg("intent extracted")

	return intent, nil
}

func (e *Extractor) parseOutput(out *agent.Output) (*Intent, error) {
	var intentIn *intentPayload
	var datetimeIn *datetimePayload

	for _, call := range out.ToolCalls {
		switch call.Name {
		case intentToolName:
			var p intentPayload
			if err := decodePayload(call.Input, &p); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
			}
			intentIn = &p
		case datetimeToolName:
			var p datetimePayload
			if err := decodePayload(call.Input, &p); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
			}
			datetimeIn = &p
		default:
			// Unknown tool names are ignored, not rejected.
			e.logger.Debug().Str("tool", call.Name).Msg("ignoring unknown tool call")
		}
	}

	// Some model responses skip the tools and answer with JSON text. Repair
	// and parse that before giving up on the turn.
	if intentIn == nil && out.FinalText != "" {
		p, err := parseTextFallback(out.FinalText)
		if err != nil {
			return nil, err
		}
		intentIn = p
	}

	if intentIn == nil || intentIn.Action == "" {
		return nil, fmt.Errorf("%w: model recorded no intent", ErrExtraction)
	}

	if datetimeIn != nil {
		intentIn.Datetime = datetimeIn
	}
	return intentIn.toIntent(), nil
}

func parseTextFallback(text string) (*intentPayload, error) {
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("%w: response is not JSON: %v", ErrExtraction, err)
	}

	var p intentPayload
	if err := json.Unmarshal([]byte(repaired), &p); err != nil {
		return nil, fmt.Errorf("%w: repaired response does not match schema: %v", ErrExtraction, err)
	}
	return &p, nil
}

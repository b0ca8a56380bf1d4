package agent

import (
	"context"
	"fmt"
)

// Caller abstracts the model API so extraction can be tested with a fake.
type Caller interface {
	Call(ctx context.Context, messages []Message, opts CallOptions) (*APIResponse, error)
	IsConfigured() bool
}

// Agent is a single-shot structured-extraction agent: it sends one request
// with a fixed tool set and collects the tool calls the model made. There is
// no tool-execution round trip; the tools exist only to force schema-shaped
// output.
type Agent struct {
	name         string
	client       Caller
	tools        []Tool
	systemPrompt string
}

// Config configures an agent
type Config struct {
	Name         string
	APIKey       string
	Model        string
	Temperature  float64
	SystemPrompt string
	Tools        []Tool
}

// New creates an agent backed by the Anthropic API.
func New(cfg Config) *Agent {
	return &Agent{
		name:         cfg.Name,
		client:       NewAPIClient(cfg.APIKey, cfg.Model, cfg.Temperature),
		tools:        cfg.Tools,
		systemPrompt: cfg.SystemPrompt,
	}
}

// NewWithCaller creates an agent with a custom API caller, used in tests.
func NewWithCaller(name string, caller Caller, systemPrompt string, tools []Tool) *Agent {
	return &Agent{
		name:         name,
		client:       caller,
		tools:        tools,
		systemPrompt: systemPrompt,
	}
}

// Name returns the agent's name
func (a *Agent) Name() string {
	return a.name
}

// IsConfigured returns true if the agent's API client is configured
func (a *Agent) IsConfigured() bool {
	return a.client != nil && a.client.IsConfigured()
}

// Extract runs one model call and returns the tool calls it produced along
// with any trailing text. The model is steered toward tool use; a response
// with neither tool calls nor text is an error.
func (a *Agent) Extract(ctx context.Context, userMessage string) (*Output, error) {
	messages := []Message{
		{
			Role:    "user",
			Content: []ContentBlock{TextBlock{Type: "text", Text: userMessage}},
		},
	}

	response, err := a.client.Call(ctx, messages, CallOptions{
		System:     a.systemPrompt,
		Tools:      a.tools,
		ToolChoice: "any",
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	out := &Output{Usage: response.Usage}
	for _, block := range response.Content {
		switch b := block.(type) {
		case ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: b.Name, Input: b.Input})
		case TextBlock:
			if out.FinalText == "" {
				out.FinalText = b.Text
			}
		}
	}

	if len(out.ToolCalls) == 0 && out.FinalText == "" {
		return nil, fmt.Errorf("model returned no tool calls and no text")
	}
	return out, nil
}

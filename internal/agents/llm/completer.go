// Package llm implements the four text tools every model provider exposes
// (chat, analysis, completion, summarize) on top of a provider Completer.
package llm

import (
	"context"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
)

// Request is a provider-neutral completion request.
// When Messages is empty the provider answers Prompt, optionally under System.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Messages    []agents.Message
	Temperature float64
	MaxTokens   int
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Response is a provider-neutral completion result.
type Response struct {
	Content string
	Model   string
	Usage   *Usage
	// Extra is merged into the tool result, e.g. Ollama timing fields.
	Extra map[string]any
}

// Completer is implemented by each model provider.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (*Response, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// AsMessages turns a prompt-style request into chat messages for providers
// that only speak chat.
func (r Request) AsMessages() []agents.Message {
	if len(r.Messages) > 0 {
		return r.Messages
	}
	var out []agents.Message
	if r.System != "" {
		out = append(out, agents.Message{Role: "system", Content: r.System})
	}
	return append(out, agents.Message{Role: "user", Content: r.Prompt})
}

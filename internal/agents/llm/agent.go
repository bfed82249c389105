package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
)

// Options configure an Agent.
type Options struct {
	// Label names the provider in tool descriptions, e.g. "OpenAI".
	Label        string
	DefaultModel string
	Available    bool
	Log          *logrus.Entry
}

// Agent exposes <prefix>_chat, <prefix>_analysis, <prefix>_completion and
// <prefix>_summarize backed by a Completer.
type Agent struct {
	prefix    string
	label     string
	model     string
	available bool
	c         Completer
	log       *logrus.Entry
}

// New builds an agent. Availability is fixed at construction.
func New(prefix string, c Completer, opts Options) *Agent {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	label := opts.Label
	if label == "" {
		label = prefix
	}
	return &Agent{
		prefix:    prefix,
		label:     label,
		model:     opts.DefaultModel,
		available: opts.Available && c != nil,
		c:         c,
		log:       log.WithField("agent", prefix),
	}
}

func (a *Agent) Available() bool { return a.available }

// Model returns the default model used when a call does not name one.
func (a *Agent) Model() string { return a.model }

func (a *Agent) Tools() map[string]protocol.ToolSchema {
	modelProp := agents.Str(fmt.Sprintf("%s model to use (default: %s)", a.label, a.model))
	messageItem := protocol.JSONSchema{
		Type: "object",
		Properties: map[string]protocol.JSONSchema{
			"role":    agents.Enum("Message role", "user", "assistant", "system"),
			"content": agents.Str("Message content"),
		},
		Required: []string{"role", "content"},
	}
	return map[string]protocol.ToolSchema{
		a.prefix + "_chat": {
			Description: fmt.Sprintf("Chat with %s using a conversation history or a single message", a.label),
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"message":     agents.Str("Single message to send (alternative to messages)"),
				"messages":    {Type: "array", Description: "Conversation messages", Items: &messageItem},
				"model":       modelProp,
				"temperature": agents.Number("Sampling temperature (default: 0.7)", 0, 2),
				"max_tokens":  agents.Integer("Maximum tokens to generate (default: 1000)", 1, 32000),
			}),
		},
		a.prefix + "_analysis": {
			Description: fmt.Sprintf("Analyze text with %s (sentiment, summary, keywords, classification)", a.label),
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"text":          agents.Str("Text to analyze"),
				"analysis_type": {Type: "string", Description: "Type of analysis (default: general)", Enum: AnalysisTypes, Default: "general"},
				"model":         modelProp,
			}, "text"),
		},
		a.prefix + "_completion": {
			Description: fmt.Sprintf("Complete a text prompt with %s", a.label),
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"prompt":      agents.Str("Text prompt to complete"),
				"model":       modelProp,
				"max_tokens":  agents.Integer("Maximum tokens to generate (default: 500)", 1, 32000),
				"temperature": agents.Number("Sampling temperature (default: 0.7)", 0, 2),
			}, "prompt"),
		},
		a.prefix + "_summarize": {
			Description: fmt.Sprintf("Summarize text with %s", a.label),
			InputSchema: agents.Object(map[string]protocol.JSONSchema{
				"text":   agents.Str("Text to summarize"),
				"length": {Type: "string", Description: "Desired summary length (default: medium)", Enum: []string{"short", "medium", "long"}, Default: "medium"},
				"style":  {Type: "string", Description: "Summary style (default: paragraph)", Enum: []string{"bullet_points", "paragraph", "abstract"}, Default: "paragraph"},
				"model":  modelProp,
			}, "text"),
		},
	}
}

func (a *Agent) HandleToolCall(ctx context.Context, tool string, params map[string]any) (any, error) {
	p := agents.Params(params)
	switch tool {
	case a.prefix + "_chat":
		return a.chat(ctx, p)
	case a.prefix + "_analysis":
		return a.analysis(ctx, p)
	case a.prefix + "_completion":
		return a.completion(ctx, p)
	case a.prefix + "_summarize":
		return a.summarize(ctx, p)
	default:
		return nil, agents.UnknownTool(tool)
	}
}

func (a *Agent) complete(ctx context.Context, tool string, req Request) (*Response, error) {
	if req.Model == "" {
		req.Model = a.model
	}
	resp, err := a.c.Complete(ctx, req)
	if err != nil {
		a.log.WithFields(logrus.Fields{"tool": tool, "model": req.Model}).WithError(err).Error("completion failed")
		return nil, fmt.Errorf("%s %s: %w", a.label, tool, err)
	}
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return resp, nil
}

func (a *Agent) result(resp *Response, key string, fields map[string]any) map[string]any {
	out := map[string]any{key: resp.Content, "model": resp.Model}
	if resp.Usage != nil {
		out["usage"] = resp.Usage
	}
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range resp.Extra {
		out[k] = v
	}
	return out
}

func (a *Agent) chat(ctx context.Context, p agents.Params) (any, error) {
	msgs, err := p.Messages("messages")
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		m := p.String("message", "")
		if m == "" {
			return nil, agents.Invalid("no messages provided")
		}
		msgs = []agents.Message{{Role: "user", Content: m}}
	}
	hasSystem := false
	for _, m := range msgs {
		if m.Role == "system" {
			hasSystem = true
			break
		}
	}
	if !hasSystem {
		msgs = append([]agents.Message{{Role: "system", Content: chatSystemPrompt}}, msgs...)
	}

	resp, err := a.complete(ctx, "chat", Request{
		Model:       p.String("model", ""),
		Messages:    msgs,
		Temperature: p.Float("temperature", 0.7),
		MaxTokens:   p.Int("max_tokens", 1000),
	})
	if err != nil {
		return nil, err
	}
	return a.result(resp, "content", nil), nil
}

func (a *Agent) analysis(ctx context.Context, p agents.Params) (any, error) {
	text := p.String("text", "")
	if text == "" {
		return nil, agents.Invalid("no text provided for analysis")
	}
	kind := p.String("analysis_type", "general")

	resp, err := a.complete(ctx, "analysis", Request{
		Model:       p.String("model", ""),
		System:      analysisSystemPrompt,
		Prompt:      analysisPrompt(kind, text),
		Temperature: 0.3,
		MaxTokens:   800,
	})
	if err != nil {
		return nil, err
	}
	return a.result(resp, "analysis", map[string]any{"analysis_type": kind}), nil
}

func (a *Agent) completion(ctx context.Context, p agents.Params) (any, error) {
	prompt := p.String("prompt", "")
	if prompt == "" {
		return nil, agents.Invalid("no prompt provided for completion")
	}

	resp, err := a.complete(ctx, "completion", Request{
		Model:       p.String("model", ""),
		System:      completionSystemPrompt,
		Prompt:      "Complete this text: " + prompt,
		Temperature: p.Float("temperature", 0.7),
		MaxTokens:   p.Int("max_tokens", 500),
	})
	if err != nil {
		return nil, err
	}
	return a.result(resp, "completion", map[string]any{"prompt": prompt}), nil
}

func (a *Agent) summarize(ctx context.Context, p agents.Params) (any, error) {
	text := p.String("text", "")
	if text == "" {
		return nil, agents.Invalid("no text provided for summarization")
	}
	length := p.String("length", "medium")
	style := p.String("style", "paragraph")

	resp, err := a.complete(ctx, "summarize", Request{
		Model:       p.String("model", ""),
		System:      summarySystemPrompt,
		Prompt:      summaryPrompt(length, style, text),
		Temperature: 0.3,
		MaxTokens:   600,
	})
	if err != nil {
		return nil, err
	}
	return a.result(resp, "summary", map[string]any{"length": length, "style": style}), nil
}

// Package agents defines the contract every tool backend implements and
// helpers shared by the concrete backends.
package agents

import (
	"context"
	"errors"

	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
)

// Agent is a named unit of functionality that owns a set of tools.
//
// Contract:
//   - Tools is pure; it may depend on capabilities probed at construction.
//   - Available is cheap and side-effect free; the registry calls it before every dispatch.
//   - HandleToolCall executes exactly one declared tool.
type Agent interface {
	Tools() map[string]protocol.ToolSchema
	Available() bool
	HandleToolCall(ctx context.Context, tool string, params map[string]any) (any, error)
}

// Errors returned by agents for caller mistakes.
var (
	ErrUnknownTool   = errors.New("unknown tool")
	ErrInvalidParams = errors.New("invalid params")
)

// Func adapts a set of handlers into an Agent. Useful for small static backends and tests.
type Func struct {
	Schemas  map[string]protocol.ToolSchema
	Handlers map[string]func(ctx context.Context, params map[string]any) (any, error)
	Up       func() bool
}

func (f *Func) Tools() map[string]protocol.ToolSchema {
	return f.Schemas
}

func (f *Func) Available() bool {
	if f.Up == nil {
		return true
	}
	return f.Up()
}

func (f *Func) HandleToolCall(ctx context.Context, tool string, params map[string]any) (any, error) {
	h, ok := f.Handlers[tool]
	if !ok {
		return nil, UnknownTool(tool)
	}
	return h(ctx, params)
}

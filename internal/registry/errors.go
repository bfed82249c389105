package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel routing errors. The typed errors below unwrap to these.
var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrAgentNotAvailable = errors.New("agent not available")
)

// ToolNotFoundError is returned when no agent owns the requested tool.
type ToolNotFoundError struct {
	Tool      string
	Available []string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("Unknown tool: %s. Available tools: [%s]", e.Tool, strings.Join(e.Available, ", "))
}

func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// AgentNotFoundError means a tool points at an agent that is no longer registered.
type AgentNotFoundError struct {
	Tool  string
	Agent string
}

func (e *AgentNotFoundError) Error() string {
	return fmt.Sprintf("Agent %s not found for tool %s", e.Agent, e.Tool)
}

func (e *AgentNotFoundError) Unwrap() error { return ErrAgentNotFound }

// AgentNotAvailableError is returned when the owning agent reports itself unavailable.
type AgentNotAvailableError struct {
	Tool  string
	Agent string
}

func (e *AgentNotAvailableError) Error() string {
	return fmt.Sprintf("Agent %s is not available", e.Agent)
}

func (e *AgentNotAvailableError) Unwrap() error { return ErrAgentNotAvailable }

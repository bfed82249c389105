// Package registry maps tool names to the agents that own them and routes calls.
package registry

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
)

// Registry owns the tool → agent mapping. The three maps are guarded as one unit.
type Registry struct {
	log *logrus.Entry

	mu         sync.RWMutex
	agents     map[string]agents.Agent
	toolOwner  map[string]string
	toolSchema map[string]protocol.ToolSchema
}

// New creates an empty registry. A nil logger discards output.
func New(log *logrus.Entry) *Registry {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Registry{
		log:        log,
		agents:     make(map[string]agents.Agent),
		toolOwner:  make(map[string]string),
		toolSchema: make(map[string]protocol.ToolSchema),
	}
}

// Register adds an agent and every tool it declares that is not already owned.
// Agents that report unavailable at registration time are skipped.
func (r *Registry) Register(name string, a agents.Agent) {
	entry := r.log.WithField("agent", name)
	if !a.Available() {
		entry.Warn("agent not available, skipping registration")
		return
	}
	tools := a.Tools()

	names := make([]string, 0, len(tools))
	for t := range tools {
		names = append(names, t)
	}
	sort.Strings(names)

	r.mu.Lock()
	if _, exists := r.agents[name]; exists {
		r.dropToolsLocked(name)
		entry.Warn("agent re-registered, replacing previous tools")
	}
	r.agents[name] = a
	var added, skipped []string
	for _, t := range names {
		if owner, taken := r.toolOwner[t]; taken {
			entry.WithFields(logrus.Fields{"tool": t, "owner": owner}).Warn("tool already registered, skipping")
			skipped = append(skipped, t)
			continue
		}
		r.toolOwner[t] = name
		r.toolSchema[t] = tools[t]
		added = append(added, t)
	}
	r.mu.Unlock()

	entry.WithFields(logrus.Fields{"tools": added, "skipped": len(skipped)}).Info("agent registered")
}

// Unregister removes an agent and all tools it owns in one step.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	if _, ok := r.agents[name]; !ok {
		r.mu.Unlock()
		r.log.WithField("agent", name).Warn("unregister: agent not found")
		return
	}
	removed := r.dropToolsLocked(name)
	delete(r.agents, name)
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"agent": name, "removed_tools": removed}).Info("agent unregistered")
}

func (r *Registry) dropToolsLocked(name string) int {
	n := 0
	for t, owner := range r.toolOwner {
		if owner == name {
			delete(r.toolOwner, t)
			delete(r.toolSchema, t)
			n++
		}
	}
	return n
}

// CallTool routes a tool call to its owning agent. Params are passed through unchanged
// and backend errors are returned as-is.
func (r *Registry) CallTool(ctx context.Context, tool string, params map[string]any) (any, error) {
	r.mu.RLock()
	owner, ok := r.toolOwner[tool]
	if !ok {
		available := r.sortedToolsLocked()
		r.mu.RUnlock()
		r.log.WithFields(logrus.Fields{"tool": tool, "agent": ""}).Warn("unknown tool")
		return nil, &ToolNotFoundError{Tool: tool, Available: available}
	}
	a, ok := r.agents[owner]
	r.mu.RUnlock()

	entry := r.log.WithFields(logrus.Fields{"tool": tool, "agent": owner})
	if !ok {
		entry.Error("tool owner missing from agent table")
		return nil, &AgentNotFoundError{Tool: tool, Agent: owner}
	}
	if !a.Available() {
		entry.Warn("agent not available")
		return nil, &AgentNotAvailableError{Tool: tool, Agent: owner}
	}

	result, err := a.HandleToolCall(ctx, tool, params)
	if err != nil {
		entry.WithError(err).Warn("tool call failed")
		return nil, err
	}
	entry.Debug("tool call ok")
	return result, nil
}

// AllTools returns a copy of every registered tool schema.
func (r *Registry) AllTools() map[string]protocol.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]protocol.ToolSchema, len(r.toolSchema))
	for k, v := range r.toolSchema {
		out[k] = v
	}
	return out
}

// AgentTools returns the tools currently mapped to the named agent.
func (r *Registry) AgentTools(name string) map[string]protocol.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]protocol.ToolSchema)
	for t, owner := range r.toolOwner {
		if owner == name {
			out[t] = r.toolSchema[t]
		}
	}
	return out
}

// ToolSchema looks up one tool.
func (r *Registry) ToolSchema(tool string) (protocol.ToolSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.toolSchema[tool]
	return s, ok
}

// Describe returns tool descriptors sorted by name.
func (r *Registry) Describe() []protocol.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := r.sortedToolsLocked()
	out := make([]protocol.ToolDescriptor, 0, len(names))
	for _, n := range names {
		out = append(out, r.toolSchema[n].Describe(n))
	}
	return out
}

// ListAgents returns registered agent names, sorted.
func (r *Registry) ListAgents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.agents))
	for n := range r.agents {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ListTools returns registered tool names, sorted.
func (r *Registry) ListTools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedToolsLocked()
}

func (r *Registry) sortedToolsLocked() []string {
	out := make([]string, 0, len(r.toolOwner))
	for t := range r.toolOwner {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// AgentStatus is the per-agent part of Status.
type AgentStatus struct {
	Available bool     `json:"available"`
	ToolCount int      `json:"tool_count"`
	Tools     []string `json:"tools"`
}

// Status summarises the registry.
type Status struct {
	TotalAgents int                    `json:"total_agents"`
	TotalTools  int                    `json:"total_tools"`
	Agents      map[string]AgentStatus `json:"agents"`
}

// Status snapshots the maps under the read lock and then asks each agent for
// its availability without holding it.
func (r *Registry) Status() Status {
	r.mu.RLock()
	snapshot := make(map[string]agents.Agent, len(r.agents))
	owned := make(map[string][]string, len(r.agents))
	for n, a := range r.agents {
		snapshot[n] = a
		owned[n] = []string{}
	}
	for t, owner := range r.toolOwner {
		owned[owner] = append(owned[owner], t)
	}
	total := len(r.toolOwner)
	r.mu.RUnlock()

	st := Status{TotalAgents: len(snapshot), TotalTools: total, Agents: make(map[string]AgentStatus, len(snapshot))}
	for n, a := range snapshot {
		tools := owned[n]
		sort.Strings(tools)
		st.Agents[n] = AgentStatus{Available: a.Available(), ToolCount: len(tools), Tools: tools}
	}
	return st
}

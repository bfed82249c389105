// Package mcpproxy exposes the tools of an external MCP server through the registry.
package mcpproxy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
	"github.com/agentic-mcp/agentic-mcp-server/internal/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrToolFailed wraps tool-level errors reported by the remote server.
var ErrToolFailed = errors.New("remote tool error")

// ServerConfig describes an external MCP server launched as a subprocess.
type ServerConfig struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	// Prefix is prepended to every remote tool name, e.g. "gh_".
	Prefix string `json:"prefix,omitempty"`
}

// Agent forwards calls to a connected MCP client session.
type Agent struct {
	name    string
	session *mcp.ClientSession
	tools   map[string]protocol.ToolSchema
	remote  map[string]string
	up      atomic.Bool
	log     *logrus.Entry
	stderr  *ringBuffer
}

// Start launches the configured command and connects to it over stdio.
func Start(ctx context.Context, cfg ServerConfig, log *logrus.Entry) (*Agent, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("mcp server %q: command is required", cfg.Name)
	}
	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	stderr := newRingBuffer(stderrLines)
	cmd.Stderr = &lineWriter{buf: stderr}
	return connect(ctx, cfg.Name, &mcp.CommandTransport{Command: cmd}, cfg.Prefix, log, stderr)
}

// Connect performs the MCP handshake over t and lists the remote tools once.
func Connect(ctx context.Context, name string, t mcp.Transport, prefix string, log *logrus.Entry) (*Agent, error) {
	return connect(ctx, name, t, prefix, log, nil)
}

func connect(ctx context.Context, name string, t mcp.Transport, prefix string, log *logrus.Entry, stderr *ringBuffer) (*Agent, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("agent", name)

	info := version.Get()
	client := mcp.NewClient(&mcp.Implementation{Name: version.Name, Version: info.Version}, nil)
	session, err := client.Connect(ctx, t, nil)
	if err != nil {
		if stderr != nil {
			if tail := stderr.Tail(5); len(tail) > 0 {
				log = log.WithField("stderr", strings.Join(tail, " | "))
			}
		}
		log.WithError(err).Debug("mcp handshake failed")
		return nil, fmt.Errorf("connect to mcp server %s: %w", name, err)
	}

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("list tools on %s: %w", name, err)
	}

	a := &Agent{
		name:    name,
		session: session,
		tools:   make(map[string]protocol.ToolSchema, len(listed.Tools)),
		remote:  make(map[string]string, len(listed.Tools)),
		log:     log,
		stderr:  stderr,
	}
	for _, tool := range listed.Tools {
		exposed := prefix + tool.Name
		a.tools[exposed] = convertSchema(tool.Description, tool.InputSchema)
		a.remote[exposed] = tool.Name
	}
	a.up.Store(true)

	go func() {
		err := session.Wait()
		a.up.Store(false)
		if err != nil {
			log.WithError(err).WithField("stderr", a.Stderr(10)).Warn("mcp session ended")
			return
		}
		log.Info("mcp session closed")
	}()

	log.WithField("tools", len(a.tools)).Info("connected to mcp server")
	return a, nil
}

// convertSchema keeps the remote input schema verbatim and decodes the typed
// subset alongside it when the schema fits.
func convertSchema(description string, in any) protocol.ToolSchema {
	out := protocol.ToolSchema{Description: description}
	if in == nil {
		return out
	}
	raw, err := json.Marshal(in)
	if err != nil || string(raw) == "null" {
		return out
	}
	out.RawInputSchema = raw
	var typed protocol.JSONSchema
	if err := json.Unmarshal(raw, &typed); err == nil {
		out.InputSchema = &typed
	}
	return out
}

// Name returns the configured server name used for registration.
func (a *Agent) Name() string { return a.name }

func (a *Agent) Tools() map[string]protocol.ToolSchema { return a.tools }

func (a *Agent) Available() bool { return a.up.Load() }

func (a *Agent) HandleToolCall(ctx context.Context, tool string, params map[string]any) (any, error) {
	remote, ok := a.remote[tool]
	if !ok {
		return nil, agents.UnknownTool(tool)
	}
	if params == nil {
		params = map[string]any{}
	}
	res, err := a.session.CallTool(ctx, &mcp.CallToolParams{Name: remote, Arguments: params})
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", remote, a.name, err)
	}

	text := contentText(res.Content)
	if res.IsError {
		return nil, fmt.Errorf("%w: %s", ErrToolFailed, text)
	}
	if res.StructuredContent != nil {
		return res.StructuredContent, nil
	}
	return text, nil
}

func contentText(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Stderr returns up to n of the last lines the server process wrote to stderr.
func (a *Agent) Stderr(n int) []string {
	if a.stderr == nil {
		return nil
	}
	return a.stderr.Tail(n)
}

// Close ends the session; the agent reports unavailable afterwards.
func (a *Agent) Close() error {
	a.up.Store(false)
	return a.session.Close()
}

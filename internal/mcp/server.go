package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
	"github.com/agentic-mcp/agentic-mcp-server/internal/registry"
	"github.com/agentic-mcp/agentic-mcp-server/internal/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ServerInfo is reported in the initialize handshake and ping.
type ServerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Server handles MCP JSON-RPC requests against a tool registry.
type Server struct {
	reg  *registry.Registry
	info ServerInfo
	log  *logrus.Entry
}

// NewServer wires a registry into an MCP server.
func NewServer(reg *registry.Registry, info ServerInfo, log *logrus.Entry) *Server {
	if info.Name == "" {
		info.Name = version.Name
	}
	if info.Version == "" {
		info.Version = version.Get().Version
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{reg: reg, info: info, log: log}
}

// Registry exposes the registry the server dispatches to.
func (s *Server) Registry() *registry.Registry { return s.reg }

// Handle routes a single request. Notifications are accepted and produce an empty
// response; transports must not write it (see protocol.Request.IsNotification).
func (s *Server) Handle(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if err := validateJSONRPC(req); err != nil {
		return protocol.Response{JSONRPC: protocol.Version, ID: normalizeID(req.ID), Error: err}, nil
	}
	if req.IsNotification() {
		s.log.WithField("method", req.Method).Debug("notification received")
		return protocol.Response{}, nil
	}

	start := time.Now()
	resp := s.dispatch(ctx, req)
	entry := s.log.WithFields(logrus.Fields{"method": req.Method, "dur": time.Since(start).String()})
	if resp.Error != nil {
		entry.WithField("code", resp.Error.Code).Debug(resp.Error.Message)
	} else {
		entry.Debug("ok")
	}
	return resp, nil
}

func (s *Server) dispatch(ctx context.Context, req protocol.Request) protocol.Response {
	id := normalizeID(req.ID)
	ok := func(result any) protocol.Response {
		return protocol.Response{JSONRPC: protocol.Version, ID: id, Result: result}
	}

	switch req.Method {
	case "initialize":
		return ok(map[string]any{
			"protocolVersion": protocol.MCPProtocolVersion,
			"serverInfo":      s.info,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
		})
	case "ping":
		return ok(map[string]any{"status": "ok", "server": s.info.Name})
	case "tools/list":
		return ok(protocol.ListResult{Tools: s.reg.Describe()})
	case "tools/call":
		var params protocol.CallParams
		if len(req.Params) == 0 {
			return WriteError(req.ID, protocol.CodeInvalidParams, "invalid params", nil)
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return WriteError(req.ID, protocol.CodeInvalidParams, "invalid params", err)
		}
		if params.Name == "" {
			return WriteError(req.ID, protocol.CodeInvalidParams, "tool name required", nil)
		}
		args, err := protocol.Decode(params.Args)
		if err != nil {
			return WriteError(req.ID, protocol.CodeInvalidParams, "arguments must be an object", err)
		}
		result, err := s.reg.CallTool(ctx, params.Name, args)
		if err != nil {
			return protocol.Response{JSONRPC: protocol.Version, ID: id, Error: ErrorFor(err)}
		}
		text, err := Render(result)
		if err != nil {
			return WriteError(req.ID, protocol.CodeInternalError, "encode result", err)
		}
		return ok(protocol.CallResult{Content: []protocol.ContentPart{{Type: "text", Text: text}}})
	case "agent/status":
		return ok(s.reg.Status())
	case "resources/list":
		return ok(map[string]any{"resources": []any{}})
	case "prompts/list":
		return ok(map[string]any{"prompts": []any{}})
	default:
		return WriteError(req.ID, protocol.CodeMethodNotFound, "method not found", nil)
	}
}

// Render turns a tool result into the text carried by tools/call content.
// Strings pass through; everything else is indented JSON.
func Render(result any) (string, error) {
	switch v := result.(type) {
	case string:
		return v, nil
	case nil:
		return "null", nil
	}
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ErrorFor maps routing and backend errors onto JSON-RPC errors.
func ErrorFor(err error) *protocol.ResponseError {
	var notFound *registry.ToolNotFoundError
	switch {
	case errors.As(err, &notFound):
		return &protocol.ResponseError{
			Code:    protocol.CodeToolNotFound,
			Message: err.Error(),
			Data:    map[string]any{"available_tools": notFound.Available},
		}
	case errors.Is(err, registry.ErrAgentNotAvailable):
		return &protocol.ResponseError{Code: protocol.CodeAgentNotAvailable, Message: err.Error()}
	case errors.Is(err, registry.ErrAgentNotFound):
		return &protocol.ResponseError{Code: protocol.CodeInternalError, Message: err.Error()}
	case errors.Is(err, agents.ErrInvalidParams), errors.Is(err, agents.ErrUnknownTool):
		return &protocol.ResponseError{Code: protocol.CodeInvalidParams, Message: err.Error()}
	default:
		return &protocol.ResponseError{Code: protocol.CodeToolExecutionError, Message: err.Error()}
	}
}

// WriteError builds a response with an error and wraps encode issues.
func WriteError(id any, code int, message string, err error) protocol.Response {
	detail := message
	if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	return protocol.Response{JSONRPC: protocol.Version, ID: normalizeID(id), Error: &protocol.ResponseError{Code: code, Message: detail}}
}

func validateJSONRPC(req protocol.Request) *protocol.ResponseError {
	if req.JSONRPC != "" && req.JSONRPC != protocol.Version {
		return &protocol.ResponseError{Code: protocol.CodeInvalidRequest, Message: "invalid jsonrpc version"}
	}
	if req.Method == "" {
		return &protocol.ResponseError{Code: protocol.CodeInvalidRequest, Message: "method required"}
	}
	return nil
}

func normalizeID(id any) any {
	switch v := id.(type) {
	case nil:
		return nil
	case string:
		return v
	case float64:
		return v
	case int, int32, int64, uint32, uint64:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

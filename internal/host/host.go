// Package host serves the REST API in front of the tool registry, alongside the
// JSON-RPC and WebSocket transports.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/mcp"
	"github.com/agentic-mcp/agentic-mcp-server/internal/registry"
	"github.com/agentic-mcp/agentic-mcp-server/internal/version"
)

const maxBodySize = 16 * 1024 * 1024

// DefaultAnalysisOrder is the provider order tried by /analyze.
var DefaultAnalysisOrder = []string{"openai", "ollama", "gemini", "azure"}

// Options configure a Host.
type Options struct {
	Info          mcp.ServerInfo
	AnalysisOrder []string
	Log           *logrus.Entry
}

// Host exposes the registry over REST, JSON-RPC and WebSocket.
type Host struct {
	reg   *registry.Registry
	rpc   *mcp.Server
	order []string
	log   *logrus.Entry
}

// New builds a host around reg.
func New(reg *registry.Registry, opts Options) *Host {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	order := opts.AnalysisOrder
	if len(order) == 0 {
		order = DefaultAnalysisOrder
	}
	return &Host{
		reg:   reg,
		rpc:   mcp.NewServer(reg, opts.Info, log.WithField("transport", "rpc")),
		order: order,
		log:   log,
	}
}

// Register mounts every route on mux.
func (h *Host) Register(mux *http.ServeMux) {
	mux.HandleFunc("/tools", h.handleTools)
	mux.HandleFunc("/tools/call", h.handleCall)
	mux.HandleFunc("/agent/status", h.handleStatus)
	mux.HandleFunc("/ping", h.handlePing)
	mux.HandleFunc("/version", h.handleVersion)
	mux.HandleFunc("/openai/chat", h.chatHandler("openai_chat"))
	mux.HandleFunc("/ollama/chat", h.chatHandler("ollama_chat"))
	mux.HandleFunc("/file", h.handleFile)
	mux.HandleFunc("/analyze", h.handleAnalyze)
	mcp.Register(mux, h.rpc, false)
}

// Handler returns the full HTTP surface with CORS and request logging applied.
func (h *Host) Handler() http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return withCORS(logRequests(h.log, mux))
}

func (h *Host) handleTools(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	tools := h.reg.Describe()
	RespondOK(w, http.StatusOK, map[string]any{"tools": tools, "count": len(tools)})
}

type callRequest struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

func (h *Host) handleCall(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req callRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ToolName == "" {
		RespondError(w, http.StatusBadRequest, "INVALID_PARAMS", "tool_name is required")
		return
	}
	h.call(r.Context(), w, req.ToolName, req.Arguments)
}

func (h *Host) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	RespondOK(w, http.StatusOK, h.reg.Status())
}

func (h *Host) handlePing(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	RespondOK(w, http.StatusOK, map[string]any{"status": "ok", "agents": len(h.reg.ListAgents())})
}

func (h *Host) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	RespondOK(w, http.StatusOK, version.Get())
}

// chatHandler forwards the request body as the parameters of a chat tool.
func (h *Host) chatHandler(tool string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodPost) {
			return
		}
		params := map[string]any{}
		if !decodeBody(w, r, &params) {
			return
		}
		h.call(r.Context(), w, tool, params)
	}
}

type fileRequest struct {
	Operation string         `json:"operation"`
	Arguments map[string]any `json:"arguments"`
}

func (h *Host) handleFile(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req fileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	op := strings.TrimPrefix(strings.TrimSpace(req.Operation), "file_")
	if op == "" {
		RespondError(w, http.StatusBadRequest, "INVALID_PARAMS", "operation is required")
		return
	}
	h.call(r.Context(), w, "file_"+op, req.Arguments)
}

type analyzeRequest struct {
	Text         string `json:"text"`
	AnalysisType string `json:"analysis_type"`
}

// handleAnalyze tries each provider's analysis tool in order and returns the first success.
func (h *Host) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		RespondError(w, http.StatusBadRequest, "INVALID_PARAMS", "text is required")
		return
	}
	if req.AnalysisType == "" {
		req.AnalysisType = "general"
	}

	params := map[string]any{"text": req.Text, "analysis_type": req.AnalysisType}
	var failures []string
	for _, provider := range h.order {
		tool := provider + "_analysis"
		result, err := h.reg.CallTool(r.Context(), tool, params)
		if err == nil {
			RespondOK(w, http.StatusOK, map[string]any{"provider": provider, "result": result})
			return
		}
		if errors.Is(err, registry.ErrToolNotFound) {
			continue
		}
		h.log.WithError(err).WithField("tool", tool).Debug("analysis provider failed")
		failures = append(failures, fmt.Sprintf("%s: %v", provider, err))
	}

	msg := "no analysis provider available"
	if len(failures) > 0 {
		msg += " (" + strings.Join(failures, "; ") + ")"
	}
	RespondError(w, http.StatusServiceUnavailable, "NO_ANALYSIS_PROVIDER", msg)
}

func (h *Host) call(ctx context.Context, w http.ResponseWriter, tool string, params map[string]any) {
	if params == nil {
		params = map[string]any{}
	}
	result, err := h.reg.CallTool(ctx, tool, params)
	if err != nil {
		h.log.WithError(err).WithField("tool", tool).Debug("tool call failed")
		respondToolError(w, err)
		return
	}
	RespondOK(w, http.StatusOK, map[string]any{"tool_name": tool, "result": result})
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	RespondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		RespondError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return false
	}
	return true
}

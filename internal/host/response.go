package host

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type respError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type response struct {
	Ok    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *respError `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func RespondOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Ok: true, Data: data})
}

func RespondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, response{Ok: false, Error: &respError{Code: code, Message: message}})
}

// respondToolError maps a registry or backend error onto a status and error code.
func respondToolError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	RespondError(w, status, code, err.Error())
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, registry.ErrToolNotFound):
		return http.StatusNotFound, "TOOL_NOT_FOUND"
	case errors.Is(err, registry.ErrAgentNotAvailable):
		return http.StatusServiceUnavailable, "AGENT_NOT_AVAILABLE"
	case errors.Is(err, registry.ErrAgentNotFound):
		return http.StatusInternalServerError, "AGENT_NOT_FOUND"
	case errors.Is(err, agents.ErrInvalidParams), errors.Is(err, agents.ErrUnknownTool):
		return http.StatusBadRequest, "INVALID_PARAMS"
	default:
		return http.StatusInternalServerError, "TOOL_EXECUTION_ERROR"
	}
}

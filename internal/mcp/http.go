package mcp

import (
	"io"
	"net/http"

	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
)

const maxBodySize = 16 * 1024 * 1024

// Register mounts the JSON-RPC endpoints on mux: POST /rpc (and / when root is
// true), GET /health and the WebSocket endpoint /ws.
func Register(mux *http.ServeMux, server *Server, root bool) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rpc := RPCHandler(server)
	mux.Handle("/rpc", rpc)
	if root {
		mux.Handle("/", rpc)
	}
	mux.Handle("/ws", WebSocketHandler(server))
}

// NewHTTPHandler returns a mux serving only the JSON-RPC transport.
func NewHTTPHandler(server *Server) http.Handler {
	mux := http.NewServeMux()
	Register(mux, server, true)
	return mux
}

// RPCHandler serves one JSON-RPC request per POST.
func RPCHandler(server *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			writeJSON(w, protocol.NewError(nil, protocol.CodeParseError, "invalid JSON"), http.StatusBadRequest)
			return
		}
		var req protocol.Request
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, protocol.NewError(nil, protocol.CodeParseError, "invalid JSON"), http.StatusBadRequest)
			return
		}

		resp, err := server.Handle(r.Context(), req)
		if err != nil {
			writeJSON(w, WriteError(req.ID, protocol.CodeInternalError, "internal error", err), http.StatusInternalServerError)
			return
		}
		if req.IsNotification() {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		writeJSON(w, resp, http.StatusOK)
	})
}

func writeJSON(w http.ResponseWriter, resp protocol.Response, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

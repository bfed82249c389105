package mcp

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// safeConn serialises writes; gorilla connections allow one concurrent writer.
type safeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *safeConn) writeResponse(resp protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// WebSocketHandler serves JSON-RPC over a WebSocket, one text frame per message.
// Requests on a connection are handled concurrently; responses carry their ids.
func WebSocketHandler(server *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			server.log.WithError(err).Warn("websocket upgrade failed")
			return
		}
		ws.SetReadLimit(maxBodySize)
		conn := &safeConn{Conn: ws}
		log := server.log.WithField("remote", r.RemoteAddr)
		log.Debug("websocket connected")

		ctx := r.Context()
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			_ = ws.Close()
			log.Debug("websocket closed")
		}()

		for {
			msgType, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.WithError(err).Warn("websocket read failed")
				}
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}

			var req protocol.Request
			if err := json.Unmarshal(data, &req); err != nil {
				_ = conn.writeResponse(protocol.NewError(nil, protocol.CodeParseError, "Parse error"))
				continue
			}

			wg.Add(1)
			go func(req protocol.Request) {
				defer wg.Done()
				resp, err := server.Handle(ctx, req)
				if err != nil {
					resp = WriteError(req.ID, protocol.CodeInternalError, "internal error", err)
				}
				if req.IsNotification() {
					return
				}
				if err := conn.writeResponse(resp); err != nil {
					log.WithError(err).Debug("websocket write failed")
				}
			}(req)
		}
	})
}

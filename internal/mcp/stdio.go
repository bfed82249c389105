package mcp

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
)

const maxLineSize = 16 * 1024 * 1024

// ServeStdio reads newline-delimited JSON-RPC requests from r and writes one
// response line per request to w. It returns when r is exhausted or ctx ends.
func ServeStdio(ctx context.Context, server *Server, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	write := func(resp protocol.Response) error {
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return bw.Flush()
	}

	server.log.WithField("tools", len(server.reg.ListTools())).Info("stdio server started")
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var req protocol.Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			server.log.WithError(err).Warn("invalid JSON received")
			if err := write(protocol.NewError(nil, protocol.CodeParseError, "Parse error")); err != nil {
				return err
			}
			continue
		}

		resp, err := server.Handle(ctx, req)
		if err != nil {
			resp = WriteError(req.ID, protocol.CodeInternalError, "internal error", err)
		}
		if req.IsNotification() {
			continue
		}
		if err := write(resp); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	server.log.Info("stdio server stopped")
	return nil
}

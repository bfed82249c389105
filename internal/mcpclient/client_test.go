package mcpclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/logging"
	"github.com/agentic-mcp/agentic-mcp-server/internal/mcp"
	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
	"github.com/agentic-mcp/agentic-mcp-server/internal/registry"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := registry.New(logging.Discard())
	reg.Register("math", &agents.Func{
		Schemas: map[string]protocol.ToolSchema{"math_double": {Description: "double n"}},
		Handlers: map[string]func(context.Context, map[string]any) (any, error){
			"math_double": func(_ context.Context, p map[string]any) (any, error) {
				n := agents.Params(p).Float("n", 0)
				return map[string]any{"result": n * 2}, nil
			},
		},
	})
	srv := httptest.NewServer(mcp.NewHTTPHandler(mcp.NewServer(reg, mcp.ServerInfo{Name: "t"}, logging.Discard())))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, 5*time.Second)
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	tools, err := c.ListTools(ctx)
	if err != nil || len(tools) != 1 || tools[0].Name != "math_double" {
		t.Fatalf("unexpected tools %+v %v", tools, err)
	}

	res, err := c.CallTool(ctx, "math_double", map[string]any{"n": 21})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := res.Text(); got != "{\n  \"result\": 42\n}" {
		t.Fatalf("unexpected text %q", got)
	}

	st, err := c.AgentStatus(ctx)
	if err != nil || st.TotalTools != 1 || !st.Agents["math"].Available {
		t.Fatalf("unexpected status %+v %v", st, err)
	}
}

func TestClientSurfacesRPCErrors(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL+"/rpc/", 5*time.Second)

	_, err := c.CallTool(context.Background(), "missing", nil)
	var rpcErr *protocol.ResponseError
	if !errors.As(err, &rpcErr) || rpcErr.Code != protocol.CodeToolNotFound {
		t.Fatalf("expected tool not found error, got %v", err)
	}
}

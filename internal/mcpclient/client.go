// Package mcpclient issues JSON-RPC calls to a running server over HTTP.
package mcpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/agentic-mcp/agentic-mcp-server/internal/protocol"
	"github.com/agentic-mcp/agentic-mcp-server/internal/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the /rpc endpoint of a server.
type Client struct {
	endpoint   string
	httpClient *http.Client
	counter    uint64
}

// New builds a client for baseURL. A URL without a path targets /rpc.
func New(baseURL string, timeout time.Duration) *Client {
	endpoint := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(endpoint, "/rpc") {
		endpoint += "/rpc"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) nextID() uint64 {
	return atomic.AddUint64(&c.counter, 1)
}

// Call sends one request and decodes its result into out. JSON-RPC errors are
// returned as *protocol.ResponseError.
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	payload := protocol.Request{
		JSONRPC: protocol.Version,
		ID:      c.nextID(),
		Method:  method,
		Params:  protocol.MustRaw(params),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call mcp server: %w", err)
	}
	defer httpResp.Body.Close()

	var resp struct {
		Result jsoniter.RawMessage     `json:"result"`
		Error  *protocol.ResponseError `json:"error"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return fmt.Errorf("mcp server returned status %d", httpResp.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return fmt.Errorf("mcp server returned status %d", httpResp.StatusCode)
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// ListTools fetches the advertised tools.
func (c *Client) ListTools(ctx context.Context) ([]protocol.ToolDescriptor, error) {
	var result protocol.ListResult
	if err := c.Call(ctx, "tools/list", map[string]any{}, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool invokes a tool and returns its content.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (protocol.CallResult, error) {
	var result protocol.CallResult
	err := c.Call(ctx, "tools/call", protocol.CallParams{Name: name, Args: protocol.MustRaw(args)}, &result)
	return result, err
}

// AgentStatus fetches the registry status report.
func (c *Client) AgentStatus(ctx context.Context) (registry.Status, error) {
	var st registry.Status
	err := c.Call(ctx, "agent/status", nil, &st)
	return st, err
}

// Ping checks the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.Call(ctx, "ping", nil, nil)
}

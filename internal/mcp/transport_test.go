package mcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestServeStdio(t *testing.T) {
	s, _ := newTestServer(t)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`not json`,
		``,
		`{"jsonrpc":"2.0","id":"b","method":"tools/call","params":{"name":"say"}}`,
	}, "\n")
	var out bytes.Buffer

	if err := ServeStdio(context.Background(), s, strings.NewReader(in), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var lines []map[string]any
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad output line %q: %v", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 responses (notification silent), got %d", len(lines))
	}
	if lines[0]["id"] != float64(1) {
		t.Fatalf("expected id 1, got %v", lines[0]["id"])
	}
	errObj, _ := lines[1]["error"].(map[string]any)
	if errObj["code"] != float64(-32700) || lines[1]["id"] != nil {
		t.Fatalf("expected parse error with null id, got %v", lines[1])
	}
	if lines[2]["id"] != "b" {
		t.Fatalf("expected id b, got %v", lines[2]["id"])
	}
}

func TestHTTPTransport(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(NewHTTPHandler(s))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health check failed: %v %v", err, resp)
	}
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/rpc", "application/json", strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body["id"] != float64(7) {
		t.Fatalf("unexpected response %d %v", resp.StatusCode, body)
	}
	tools := body["result"].(map[string]any)["tools"].([]any)
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(tools))
	}

	resp, err = http.Post(srv.URL+"/", "application/json", strings.NewReader(`{oops`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/rpc", "application/json", strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/cancelled"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 for notification, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/rpc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestWebSocketTransport(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(NewHTTPHandler(s))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"k":"v"}}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != float64(3) || body["error"] != nil {
		t.Fatalf("unexpected response: %v", body)
	}
	content := body["result"].(map[string]any)["content"].([]any)
	if text := content[0].(map[string]any)["text"].(string); !strings.Contains(text, `"k": "v"`) {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestWebSocketRejectsOversizedFrame(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(NewHTTPHandler(s))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	big := bytes.Repeat([]byte("x"), maxBodySize+1)
	_ = conn.WriteMessage(websocket.TextMessage, big)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected connection to be closed after oversized frame")
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		t.Fatalf("expected server to close the connection, got timeout")
	}
}

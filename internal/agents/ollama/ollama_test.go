package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type fakeServer struct {
	mu     sync.Mutex
	models []string
	last   map[string]any
	path   string
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		models := []map[string]any{}
		for _, m := range f.models {
			models = append(models, map[string]any{"name": m, "model": m})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": models})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3.2:latest",
			"message":           map[string]any{"role": "assistant", "content": "chat reply"},
			"done":              true,
			"total_duration":    1500,
			"prompt_eval_count": 7,
			"eval_count":        9,
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.2:latest",
			"response": "generated",
			"done":     true,
		})
	})
	return mux
}

func (f *fakeServer) record(r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	f.last, f.path = body, r.URL.Path
	f.mu.Unlock()
}

func (f *fakeServer) seen() (string, map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path, f.last
}

func TestSelectModel(t *testing.T) {
	cases := []struct {
		configured string
		installed  []string
		want       string
		ok         bool
	}{
		{"llama3.2:latest", []string{"mistral:7b", "llama3.2:latest"}, "llama3.2:latest", true},
		{"llama3.2:latest", []string{"mistral:7b", "llama3.2:3b"}, "llama3.2:3b", true},
		{"phi", []string{"mistral:7b", "phi3:mini"}, "phi3:mini", true},
		{"gemma", []string{"mistral:7b"}, "mistral:7b", true},
		{"gemma", nil, "", false},
	}
	for _, tc := range cases {
		got, ok := SelectModel(tc.configured, tc.installed)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("SelectModel(%q, %v): expected %q/%v, got %q/%v", tc.configured, tc.installed, tc.want, tc.ok, got, ok)
		}
	}
}

func TestNewUnavailableWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := New(context.Background(), Config{URL: url, Model: "llama3.2:latest"}, nil)
	if a.Available() {
		t.Fatalf("expected unavailable agent")
	}
}

func TestNewUnavailableWithoutModels(t *testing.T) {
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler())
	defer srv.Close()

	a := New(context.Background(), Config{URL: srv.URL, Model: "llama3.2:latest"}, nil)
	if a.Available() {
		t.Fatalf("expected unavailable agent with no models")
	}
}

func TestChatAndGenerate(t *testing.T) {
	fs := &fakeServer{models: []string{"llama3.2:latest"}}
	srv := httptest.NewServer(fs.handler())
	defer srv.Close()

	a := New(context.Background(), Config{URL: srv.URL, Model: "llama3.2"}, nil)
	if !a.Available() {
		t.Fatalf("expected available agent")
	}
	if a.Model() != "llama3.2:latest" {
		t.Fatalf("expected resolved model llama3.2:latest, got %s", a.Model())
	}

	out, err := a.HandleToolCall(context.Background(), "ollama_chat", map[string]any{"message": "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := out.(map[string]any)
	if res["content"] != "chat reply" || res["done"] != true || res["eval_count"] != 9 {
		t.Fatalf("unexpected chat result: %v", res)
	}
	path, body := fs.seen()
	if path != "/api/chat" {
		t.Fatalf("expected /api/chat, got %s", path)
	}
	opts, _ := body["options"].(map[string]any)
	if opts["num_predict"] != float64(1000) {
		t.Fatalf("expected num_predict 1000, got %v", opts["num_predict"])
	}

	out, err = a.HandleToolCall(context.Background(), "ollama_summarize", map[string]any{"text": "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path, body = fs.seen()
	if path != "/api/generate" {
		t.Fatalf("expected /api/generate, got %s", path)
	}
	if body["system"] == nil || body["model"] != "llama3.2:latest" {
		t.Fatalf("unexpected generate body: %v", body)
	}
	if out.(map[string]any)["summary"] != "generated" {
		t.Fatalf("unexpected summarize result: %v", out)
	}
}

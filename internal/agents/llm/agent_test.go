package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
)

type recordingCompleter struct {
	last Request
	resp *Response
	err  error
}

func (r *recordingCompleter) Complete(_ context.Context, req Request) (*Response, error) {
	r.last = req
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

func newAgent(c Completer) *Agent {
	return New("fake", c, Options{Label: "Fake", DefaultModel: "m-default", Available: true})
}

func TestToolsUsePrefix(t *testing.T) {
	a := newAgent(&recordingCompleter{})
	tools := a.Tools()
	for _, name := range []string{"fake_chat", "fake_analysis", "fake_completion", "fake_summarize"} {
		if _, ok := tools[name]; !ok {
			t.Fatalf("expected tool %s", name)
		}
	}
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(tools))
	}
}

func TestUnavailableWithoutCompleter(t *testing.T) {
	a := New("x", nil, Options{Available: true})
	if a.Available() {
		t.Fatalf("expected unavailable agent without a completer")
	}
}

func TestChatPrependsSystemAndDefaults(t *testing.T) {
	rc := &recordingCompleter{resp: &Response{Content: "hi", Usage: &Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}}}
	a := newAgent(rc)

	out, err := a.HandleToolCall(context.Background(), "fake_chat", map[string]any{"message": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rc.last.Messages) != 2 || rc.last.Messages[0].Role != "system" || rc.last.Messages[1].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", rc.last.Messages)
	}
	if rc.last.Model != "m-default" || rc.last.Temperature != 0.7 || rc.last.MaxTokens != 1000 {
		t.Fatalf("unexpected defaults: %+v", rc.last)
	}
	res := out.(map[string]any)
	if res["content"] != "hi" || res["model"] != "m-default" {
		t.Fatalf("unexpected result: %v", res)
	}
	if u, ok := res["usage"].(*Usage); !ok || u.TotalTokens != 3 {
		t.Fatalf("expected usage, got %v", res["usage"])
	}
}

func TestChatKeepsCallerSystemMessage(t *testing.T) {
	rc := &recordingCompleter{resp: &Response{Content: "ok", Model: "m2"}}
	a := newAgent(rc)

	_, err := a.HandleToolCall(context.Background(), "fake_chat", map[string]any{
		"messages": []any{
			map[string]any{"role": "system", "content": "be brief"},
			map[string]any{"role": "user", "content": "q"},
		},
		"model":       "m2",
		"temperature": 0.1,
		"max_tokens":  50.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rc.last.Messages) != 2 || rc.last.Messages[0].Content != "be brief" {
		t.Fatalf("expected caller system message kept, got %+v", rc.last.Messages)
	}
	if rc.last.Model != "m2" || rc.last.Temperature != 0.1 || rc.last.MaxTokens != 50 {
		t.Fatalf("unexpected request: %+v", rc.last)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	a := newAgent(&recordingCompleter{})
	_, err := a.HandleToolCall(context.Background(), "fake_chat", map[string]any{})
	if !errors.Is(err, agents.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestAnalysis(t *testing.T) {
	rc := &recordingCompleter{resp: &Response{Content: "positive", Extra: map[string]any{"done": true}}}
	a := newAgent(rc)

	out, err := a.HandleToolCall(context.Background(), "fake_analysis", map[string]any{"text": "great", "analysis_type": "sentiment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(rc.last.Prompt, "Analyze the sentiment") || rc.last.Temperature != 0.3 || rc.last.MaxTokens != 800 {
		t.Fatalf("unexpected request: %+v", rc.last)
	}
	res := out.(map[string]any)
	if res["analysis"] != "positive" || res["analysis_type"] != "sentiment" || res["done"] != true {
		t.Fatalf("unexpected result: %v", res)
	}
	if _, ok := res["usage"]; ok {
		t.Fatalf("expected no usage key when provider reports none")
	}
}

func TestCompletionAndSummarize(t *testing.T) {
	rc := &recordingCompleter{resp: &Response{Content: "done"}}
	a := newAgent(rc)

	out, err := a.HandleToolCall(context.Background(), "fake_completion", map[string]any{"prompt": "Once upon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.last.Prompt != "Complete this text: Once upon" || rc.last.MaxTokens != 500 {
		t.Fatalf("unexpected request: %+v", rc.last)
	}
	if out.(map[string]any)["prompt"] != "Once upon" {
		t.Fatalf("expected prompt echoed, got %v", out)
	}

	out, err = a.HandleToolCall(context.Background(), "fake_summarize", map[string]any{"text": "long text", "length": "short", "style": "bullet_points"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Summarize the following text in 2-3 sentences using bullet points:\n\nlong text"
	if rc.last.Prompt != want {
		t.Fatalf("expected %q, got %q", want, rc.last.Prompt)
	}
	res := out.(map[string]any)
	if res["summary"] != "done" || res["length"] != "short" || res["style"] != "bullet_points" {
		t.Fatalf("unexpected result: %v", res)
	}
}

func TestCompleterErrorWrapped(t *testing.T) {
	boom := errors.New("upstream down")
	a := newAgent(&recordingCompleter{err: boom})

	_, err := a.HandleToolCall(context.Background(), "fake_completion", map[string]any{"prompt": "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

func TestAsMessages(t *testing.T) {
	msgs := Request{System: "s", Prompt: "p"}.AsMessages()
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Content != "p" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	msgs = Request{Prompt: "p"}.AsMessages()
	if len(msgs) != 1 || msgs[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

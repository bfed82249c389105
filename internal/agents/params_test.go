package agents

import (
	"context"
	"errors"
	"testing"
)

func TestParamsAccessors(t *testing.T) {
	p := Params{
		"path":    "a.txt",
		"empty":   "",
		"flag":    "yes",
		"n":       float64(2.6),
		"temp":    float64(0.4),
		"wrong":   12.0,
		"enabled": true,
	}

	if s, err := p.Require("path"); err != nil || s != "a.txt" {
		t.Fatalf("expected a.txt, got %q %v", s, err)
	}
	if _, err := p.Require("missing"); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if _, err := p.Require("wrong"); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for non-string, got %v", err)
	}
	if got := p.String("empty", "utf-8"); got != "utf-8" {
		t.Fatalf("expected fallback for empty string, got %q", got)
	}
	if !p.Bool("flag", false) || !p.Bool("enabled", false) || p.Bool("missing", false) {
		t.Fatalf("unexpected bool parsing")
	}
	if got := p.Int("n", 0); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := p.Float("temp", 1); got != 0.4 {
		t.Fatalf("expected 0.4, got %v", got)
	}
}

func TestParamsMessages(t *testing.T) {
	p := Params{"messages": []any{
		map[string]any{"role": "system", "content": "be brief"},
		map[string]any{"role": "user", "content": "hi"},
	}}
	msgs, err := p.Messages("messages")
	if err != nil || len(msgs) != 2 || msgs[1].Content != "hi" {
		t.Fatalf("unexpected messages: %+v %v", msgs, err)
	}

	if _, err := (Params{"messages": "hi"}).Messages("messages"); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for non-array, got %v", err)
	}
	if _, err := (Params{"messages": []any{map[string]any{"content": "x"}}}).Messages("messages"); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for missing role, got %v", err)
	}
	if msgs, err := (Params{}).Messages("messages"); err != nil || msgs != nil {
		t.Fatalf("expected nil for absent messages, got %v %v", msgs, err)
	}
}

func TestFuncAgent(t *testing.T) {
	f := &Func{Handlers: map[string]func(context.Context, map[string]any) (any, error){
		"hello": func(context.Context, map[string]any) (any, error) { return "hi", nil },
	}}
	if !f.Available() {
		t.Fatalf("expected available without Up")
	}
	if _, err := f.HandleToolCall(context.Background(), "bye", nil); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

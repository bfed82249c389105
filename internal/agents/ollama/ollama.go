// Package ollama backs the ollama_* tools with a local Ollama runtime.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/llm"
)

// Name is the registry name and tool prefix.
const Name = "ollama"

// Config points the agent at an Ollama server.
type Config struct {
	URL          string
	Model        string
	HTTPClient   *http.Client
	ProbeTimeout time.Duration
}

// Client implements llm.Completer over the Ollama HTTP API.
type Client struct {
	api *api.Client
}

// NewClient builds an Ollama API client for baseURL.
func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{api: api.NewClient(u, hc)}, nil
}

// Models lists installed model names.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		name := m.Model
		if name == "" {
			name = m.Name
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// Complete uses /api/chat for message requests and /api/generate for prompts.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	stream := false
	opts := map[string]any{
		"temperature": req.Temperature,
		"num_predict": req.MaxTokens,
	}

	if len(req.Messages) > 0 {
		msgs := make([]api.Message, 0, len(req.Messages))
		for _, m := range req.Messages {
			msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
		}
		var final api.ChatResponse
		var sb strings.Builder
		err := c.api.Chat(ctx, &api.ChatRequest{
			Model:    req.Model,
			Messages: msgs,
			Stream:   &stream,
			Options:  opts,
		}, func(r api.ChatResponse) error {
			sb.WriteString(r.Message.Content)
			final = r
			return nil
		})
		if err != nil {
			return nil, err
		}
		return response(sb.String(), final.Model, req.Model, final.Done, final.Metrics), nil
	}

	var final api.GenerateResponse
	var sb strings.Builder
	err := c.api.Generate(ctx, &api.GenerateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Stream:  &stream,
		Options: opts,
	}, func(r api.GenerateResponse) error {
		sb.WriteString(r.Response)
		final = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response(sb.String(), final.Model, req.Model, final.Done, final.Metrics), nil
}

func response(content, model, fallback string, done bool, m api.Metrics) *llm.Response {
	if model == "" {
		model = fallback
	}
	return &llm.Response{
		Content: content,
		Model:   model,
		Extra: map[string]any{
			"done":              done,
			"total_duration":    m.TotalDuration.Nanoseconds(),
			"prompt_eval_count": m.PromptEvalCount,
			"eval_count":        m.EvalCount,
		},
	}
}

// SelectModel picks the configured model when installed, else the first installed
// model whose name contains it or shares its base name, else the first installed model.
func SelectModel(configured string, installed []string) (string, bool) {
	if len(installed) == 0 {
		return "", false
	}
	base := strings.SplitN(configured, ":", 2)[0]
	for _, m := range installed {
		if m == configured {
			return m, true
		}
	}
	if configured != "" {
		for _, m := range installed {
			if strings.Contains(m, configured) || strings.HasPrefix(m, base) {
				return m, true
			}
		}
	}
	return installed[0], true
}

// New probes the server once and returns the ollama agent. The agent reports
// unavailable when the server is unreachable or has no models installed.
func New(ctx context.Context, cfg Config, log *logrus.Entry) *llm.Agent {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("agent", Name)
	opts := llm.Options{Label: "Ollama", DefaultModel: cfg.Model, Log: log}

	client, err := NewClient(cfg.URL, cfg.HTTPClient)
	if err != nil {
		log.WithError(err).Error("failed to create ollama client")
		return llm.New(Name, nil, opts)
	}

	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	installed, err := client.Models(pctx)
	if err != nil {
		log.WithError(err).WithField("url", cfg.URL).Warn("ollama not reachable")
		return llm.New(Name, nil, opts)
	}
	model, ok := SelectModel(cfg.Model, installed)
	if !ok {
		log.Error("no ollama models available")
		return llm.New(Name, nil, opts)
	}
	if model != cfg.Model {
		log.WithFields(logrus.Fields{"configured": cfg.Model, "using": model}).Info("configured model not installed, using fallback")
	}
	opts.DefaultModel = model
	opts.Available = true
	log.WithField("model", model).Info("ollama client initialized")
	return llm.New(Name, client, opts)
}

var _ llm.Completer = (*Client)(nil)
var _ agents.Agent = (*llm.Agent)(nil)

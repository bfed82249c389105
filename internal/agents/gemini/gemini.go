// Package gemini backs the gemini_* tools with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/llm"
)

// Name is the registry name and tool prefix.
const Name = "gemini"

// Config holds Gemini credentials and defaults.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements llm.Completer over google.golang.org/genai.
type Client struct {
	client *genai.Client
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	var (
		contents []*genai.Content
		system   *genai.Content
	)
	for _, m := range req.AsMessages() {
		part := &genai.Part{Text: m.Content}
		switch m.Role {
		case "system":
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, part)
		case "assistant":
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{part}})
		default:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{part}})
		}
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("empty response from Gemini")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	out := &llm.Response{Content: sb.String(), Model: resp.ModelVersion}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int64(u.PromptTokenCount),
			CompletionTokens: int64(u.CandidatesTokenCount),
			TotalTokens:      int64(u.TotalTokenCount),
		}
	}
	return out, nil
}

// New returns the gemini agent; it is available only when an API key is configured
// and the client could be created.
func New(ctx context.Context, cfg Config, log *logrus.Entry) *llm.Agent {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("agent", Name)
	opts := llm.Options{Label: "Gemini", DefaultModel: cfg.Model, Log: log}
	if cfg.APIKey == "" {
		log.Warn("GEMINI_API_KEY not set, gemini agent disabled")
		return llm.New(Name, nil, opts)
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("failed to create gemini client")
		return llm.New(Name, nil, opts)
	}
	opts.Available = true
	log.WithField("model", cfg.Model).Info("gemini client initialized")
	return llm.New(Name, client, opts)
}

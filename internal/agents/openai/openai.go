// Package openai backs the openai_* tools with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/llm"
)

// Name is the registry name and tool prefix.
const Name = "openai"

// Config holds OpenAI credentials and defaults.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
}

// Client implements llm.Completer over the official SDK.
type Client struct {
	client *openai.Client
}

// NewClient wraps the SDK client.
func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := openai.NewClient(opts...)
	return &Client{client: &client}
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	msgs := req.AsMessages()
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)),
	}
	for _, m := range msgs {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	params.Temperature = openai.Float(req.Temperature)

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("empty response from OpenAI")
	}

	resp := &llm.Response{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
	}
	if completion.Usage.TotalTokens > 0 {
		resp.Usage = &llm.Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		}
	}
	return resp, nil
}

// New returns the openai agent; it is available only when an API key is configured.
func New(cfg Config, log *logrus.Entry) *llm.Agent {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("agent", Name)
	opts := llm.Options{Label: "OpenAI", DefaultModel: cfg.Model, Log: log}
	if cfg.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, openai agent disabled")
		return llm.New(Name, nil, opts)
	}
	opts.Available = true
	log.WithField("model", cfg.Model).Info("openai client initialized")
	return llm.New(Name, NewClient(cfg), opts)
}

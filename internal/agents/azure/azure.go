// Package azure backs the azure_* tools with an Azure OpenAI deployment.
package azure

import (
	"context"
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/sirupsen/logrus"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents/llm"
)

// Name is the registry name and tool prefix.
const Name = "azure"

// Config identifies an Azure OpenAI deployment.
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// Configured reports whether every field needed to reach the deployment is set.
func (c Config) Configured() bool {
	return c.Endpoint != "" && c.APIKey != "" && c.Deployment != ""
}

// Client implements llm.Completer over azopenai.
type Client struct {
	client     *azopenai.Client
	deployment string
}

// NewClient authenticates with an API key.
func NewClient(cfg Config) (*Client, error) {
	client, err := azopenai.NewClientWithKeyCredential(cfg.Endpoint, azcore.NewKeyCredential(cfg.APIKey), nil)
	if err != nil {
		return nil, err
	}
	return &Client{client: client, deployment: cfg.Deployment}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	deployment := req.Model
	if deployment == "" {
		deployment = c.deployment
	}

	var msgs []azopenai.ChatRequestMessageClassification
	for _, m := range req.AsMessages() {
		switch m.Role {
		case "system":
			msgs = append(msgs, &azopenai.ChatRequestSystemMessage{Content: azopenai.NewChatRequestSystemMessageContent(m.Content)})
		case "assistant":
			msgs = append(msgs, &azopenai.ChatRequestAssistantMessage{Content: azopenai.NewChatRequestAssistantMessageContent(m.Content)})
		default:
			msgs = append(msgs, &azopenai.ChatRequestUserMessage{Content: azopenai.NewChatRequestUserMessageContent(m.Content)})
		}
	}

	opts := azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(deployment),
		Messages:       msgs,
		Temperature:    to.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		opts.MaxTokens = to.Ptr(int32(req.MaxTokens))
	}

	resp, err := c.client.GetChatCompletions(ctx, opts, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, errors.New("empty response from Azure OpenAI")
	}

	out := &llm.Response{Content: *resp.Choices[0].Message.Content, Model: deployment}
	if resp.Model != nil {
		out.Model = *resp.Model
	}
	if u := resp.Usage; u != nil && u.TotalTokens != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int64(deref(u.PromptTokens)),
			CompletionTokens: int64(deref(u.CompletionTokens)),
			TotalTokens:      int64(*u.TotalTokens),
		}
	}
	return out, nil
}

func deref(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}

// New returns the azure agent; it is available when endpoint, key and deployment are set.
func New(cfg Config, log *logrus.Entry) *llm.Agent {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("agent", Name)
	opts := llm.Options{Label: "Azure OpenAI", DefaultModel: cfg.Deployment, Log: log}
	if !cfg.Configured() {
		log.Warn("Azure OpenAI not configured, azure agent disabled")
		return llm.New(Name, nil, opts)
	}
	client, err := NewClient(cfg)
	if err != nil {
		log.WithError(err).Error("failed to create azure openai client")
		return llm.New(Name, nil, opts)
	}
	opts.Available = true
	log.WithField("deployment", cfg.Deployment).Info("azure openai client initialized")
	return llm.New(Name, client, opts)
}

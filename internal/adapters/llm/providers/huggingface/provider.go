package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/spounge-ai/brainstormity/internal/adapters/llm"
)

const (
	providerName = "huggingface"

	maxErrorMessageLen = 512
)

// Config configures the Hugging Face inference router client.
type Config struct {
	APIKey  string `validate:"required"`
	BaseURL string `validate:"required,url"`
	Model   string `validate:"required"`
	// HTTPClient is optional; the router is called with http.DefaultClient semantics otherwise.
	HTTPClient *http.Client
}

// Provider calls the OpenAI-compatible chat completions endpoint of the Hugging Face router,
// which forwards to the inference provider named in the model suffix (e.g. ":novita").
type Provider struct {
	client *openai.Client
	model  string
}

var _ llm.Provider = (*Provider)(nil)

func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("huggingface: model is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

func (p *Provider) Name() string  { return providerName }
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	choices := req.Choices
	if choices <= 0 {
		choices = 1
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		N:           choices,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, translateError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &llm.ProviderError{Provider: providerName, Message: llm.ErrNoChoices.Error(), Err: llm.ErrNoChoices}
	}

	first := resp.Choices[0]
	return &llm.Response{
		Content:      first.Message.Content,
		Model:        resp.Model,
		FinishReason: string(first.FinishReason),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// translateError keeps the router's own error text and drops transport detail such as URLs.
func translateError(err error) error {
	pErr := &llm.ProviderError{Provider: providerName, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		pErr.Message = "provider request timed out"
	case errors.Is(err, context.Canceled):
		pErr.Message = "request cancelled before the provider responded"
	// RequestError first: bodies the client cannot decode arrive as a RequestError wrapping an empty APIError.
	case errors.As(err, &reqErr):
		pErr.StatusCode = reqErr.HTTPStatusCode
		pErr.Message = bodyMessage(reqErr.Body)
		if pErr.Message == "" {
			pErr.Message = fmt.Sprintf("provider returned HTTP %d", reqErr.HTTPStatusCode)
		}
	case errors.As(err, &apiErr):
		pErr.StatusCode = apiErr.HTTPStatusCode
		pErr.Message = apiErr.Message
		if pErr.Message == "" {
			pErr.Message = fmt.Sprintf("provider returned HTTP %d", apiErr.HTTPStatusCode)
		}
	case errors.As(err, &netErr) && netErr.Timeout():
		pErr.Message = "provider request timed out"
	default:
		pErr.Message = "provider unreachable"
	}

	return pErr
}

// bodyMessage pulls a message out of the error bodies inference providers return:
// {"error": "..."}, {"error": {"message": "..."}} or {"message": "..."}.
func bodyMessage(body []byte) string {
	var shape struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &shape) != nil {
		return ""
	}

	var msg string
	var nested struct {
		Message string `json:"message"`
	}
	switch {
	case json.Unmarshal(shape.Error, &msg) == nil && msg != "":
	case json.Unmarshal(shape.Error, &nested) == nil && nested.Message != "":
		msg = nested.Message
	default:
		msg = shape.Message
	}

	msg = strings.TrimSpace(msg)
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen] + "..."
	}
	return msg
}

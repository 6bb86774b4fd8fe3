package llm

import (
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrNoChoices = errors.New("provider returned no completion choices")

// Request is a chat-style generation request.
type Request struct {
	Messages    []Message
	Model       string  // Optional override of the provider's default model
	Choices     int     // Completions requested; zero means one
	Temperature float32 // Optional; zero keeps the provider default
	MaxTokens   int     // Optional; zero keeps the provider default
}

// UserPrompt builds a single-turn request holding one user message.
func UserPrompt(prompt string) *Request {
	return &Request{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
		Choices:  1,
	}
}

// Message represents a single turn in a conversation.
type Message struct {
	Role    string
	Content string
}

// Response is the first completion choice of a generation.
type Response struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// Usage captures token usage info.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ProviderError is returned by adapters for every failed call. Message is safe to show to API
// clients; Err keeps the underlying cause for logs.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

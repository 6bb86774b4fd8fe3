package llm

import "context"

// Provider is a text-generation backend. Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	// Model is the default model requests are sent to.
	Model() string
	Generate(ctx context.Context, req *Request) (*Response, error)
}

package generator

import "context"

// LLMClient abstracts the text-generation service so it can be swapped or mocked.
// Implementations are stateless: every call carries its full context.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings carries the provider configuration shared by implementations.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

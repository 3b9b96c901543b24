package llm

import "context"

// Provider is the text-generation collaborator. One request, one plain
// text response. Providers make a single attempt: a failure is terminal
// for that attempt and the caller decides what degrades.
type Provider interface {
	// Generate sends the prompt and returns the generated text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string
}

// Request describes what to send.
type Request struct {
	// System sets the model's role and constraints. Optional.
	System string

	// Prompt is the user message.
	Prompt string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0-1.0. Zero means the
	// provider default.
	Temperature float64
}

// Response holds the generated output.
type Response struct {
	// Text is the generated text.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

package llm

import (
	"context"
	"fmt"

	"github.com/ytakagi/excelquiz/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with advice
// request logging. Every Generate call is a single attempt; callers retry
// through the UI.
func NewProvider(ctx context.Context, cfg Config, log store.AdviceLogRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if log != nil {
		return WithLogging(base, log), nil
	}
	return base, nil
}

package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/store"
)

// NewProvider builds the configured provider wrapped as
// caller → timeout → retry → journal → base (traced).
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	log.Info("llm provider ready", "provider", cfg.Provider, "model", base.ModelID())

	var p Provider = base
	if events != nil {
		p = WithJournal(p, cfg.Provider, events, log)
	}
	p = WithRetry(p, cfg.Retry, log)
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return p, nil
}

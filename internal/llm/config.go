package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the model provider.
type Config struct {
	Provider string `env:"FEELIO_LLM_PROVIDER"`

	// Model overrides the selected provider's model when set.
	Model string `env:"FEELIO_LLM_MODEL"`

	Anthropic  AnthropicConfig  `envPrefix:"FEELIO_ANTHROPIC_"`
	OpenAI     OpenAIConfig     `envPrefix:"FEELIO_OPENAI_"`
	Gemini     GeminiConfig     `envPrefix:"FEELIO_GEMINI_"`
	OpenRouter OpenRouterConfig `envPrefix:"FEELIO_OPENROUTER_"`
	Retry      RetryConfig      `envPrefix:"FEELIO_LLM_RETRY_"`

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration `env:"FEELIO_LLM_TIMEOUT"`
}

type AnthropicConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL"`
}

type OpenAIConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL"`
	BaseURL string `env:"BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL"`
}

type OpenRouterConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL"`
	BaseURL string `env:"BASE_URL"`
}

// RetryConfig is exponential backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS"`
	InitialWait time.Duration `env:"INITIAL_WAIT"`
	MaxWait     time.Duration `env:"MAX_WAIT"`
	Multiplier  float64       `env:"MULTIPLIER"`
}

// DefaultConfig uses OpenAI's gpt-4o, the model the mentor prompt was
// written against.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderOpenAI,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// vendorKeys are the standard key variables each SDK documents, in probe
// order.
var vendorKeys = []struct {
	provider string
	env      string
}{
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// ConfigFromEnv builds a Config from FEELIO_* variables. Keys missing there
// fall back to the vendor variables. When FEELIO_LLM_PROVIDER is unset the
// first provider with a vendor key is chosen.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	explicit := os.Getenv("FEELIO_LLM_PROVIDER") != ""

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse LLM env: %w", err)
	}

	for _, vk := range vendorKeys {
		key := os.Getenv(vk.env)
		if key == "" {
			continue
		}
		if cfg.keyFor(vk.provider) == "" {
			cfg.setKey(vk.provider, key)
		}
	}

	if !explicit {
		if discovered, ok := DiscoverConfig(); ok {
			cfg.Provider = discovered.Provider
		}
	}

	if cfg.Model != "" {
		cfg.setModel(cfg.Provider, cfg.Model)
	}
	return cfg, nil
}

// DiscoverConfig returns a Config for the first provider whose vendor key
// variable is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, vk := range vendorKeys {
		if key := os.Getenv(vk.env); key != "" {
			cfg.Provider = vk.provider
			cfg.setKey(vk.provider, key)
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider can be constructed.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.keyFor(c.Provider) == "" {
			return fmt.Errorf("no API key for the %s provider: set FEELIO_%s_API_KEY", c.Provider, envName(c.Provider))
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}

// ModelFor returns the configured model of the selected provider.
func (c Config) ModelFor() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	}
	return c.Provider
}

func (c Config) keyFor(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	}
	return ""
}

func (c *Config) setKey(provider, key string) {
	switch provider {
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderGemini:
		c.Gemini.APIKey = key
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = key
	}
}

func (c *Config) setModel(provider, model string) {
	switch provider {
	case ProviderAnthropic:
		c.Anthropic.Model = model
	case ProviderOpenAI:
		c.OpenAI.Model = model
	case ProviderGemini:
		c.Gemini.Model = model
	case ProviderOpenRouter:
		c.OpenRouter.Model = model
	}
}

func envName(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC"
	case ProviderOpenAI:
		return "OPENAI"
	case ProviderGemini:
		return "GEMINI"
	case ProviderOpenRouter:
		return "OPENROUTER"
	}
	return provider
}

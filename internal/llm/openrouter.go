package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter ranks apps by these headers.
const (
	openRouterReferer = "https://github.com/abhisek/feelio"
	openRouterTitle   = "feelio"
)

// OpenRouterProvider sends Chat Completions requests through OpenRouter.
// Model ids such as "openai/gpt-4o" pass through unchanged.
type OpenRouterProvider struct {
	hosted
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenRouterBaseURL
	}
	hc := &http.Client{Transport: appHeaders{next: http.DefaultTransport}}
	v, err := newChatVendor("openrouter", cfg.APIKey, cfg.Model, base, hc)
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{hosted{v}}, nil
}

// appHeaders stamps the OpenRouter attribution headers on each request.
type appHeaders struct {
	next http.RoundTripper
}

func (t appHeaders) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
	return t.next.RoundTrip(req)
}

package inference

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted by NewService.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Default models per provider, used when Options.Model is empty.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// Options configures a provider-backed Service.
type Options struct {
	Provider        string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
	RetryAttempts   int

	OpenAIKey string
	GeminiKey string
}

// NewService builds the Service for opts.Provider, wrapped in WithRetry.
// Provider "none" (or empty) returns Disabled.
func NewService(ctx context.Context, opts Options) (Service, error) {
	var svc Service
	switch opts.Provider {
	case ProviderOpenAI:
		s, err := NewOpenAIService(opts.OpenAIKey, opts)
		if err != nil {
			return nil, err
		}
		svc = s
	case ProviderGemini:
		s, err := NewGeminiService(ctx, opts.GeminiKey, opts)
		if err != nil {
			return nil, err
		}
		svc = s
	case ProviderNone, "":
		return Disabled, nil
	default:
		return nil, fmt.Errorf("unknown inference provider %q", opts.Provider)
	}

	policy := DefaultRetryPolicy()
	if opts.RetryAttempts > 0 {
		policy.MaxAttempts = opts.RetryAttempts
	}
	return WithRetry(svc, policy), nil
}

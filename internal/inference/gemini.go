package inference

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiService submits prompts to the Gemini API in JSON response mode.
type GeminiService struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
	timeout         time.Duration
}

// NewGeminiService creates a GeminiService.
func NewGeminiService(ctx context.Context, apiKey string, opts Options) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiService{
		client:          client,
		model:           model,
		temperature:     float32(opts.Temperature),
		maxOutputTokens: int32(opts.MaxOutputTokens),
		timeout:         opts.Timeout,
	}, nil
}

// SubmitPrompt sends prompt as user text and returns the response text.
func (s *GeminiService) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(s.temperature),
		MaxOutputTokens:  s.maxOutputTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	return trimCodeFence(resp.Text()), nil
}

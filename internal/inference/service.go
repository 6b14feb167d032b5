package inference

import (
	"context"
	stderrors "errors"
	"strings"
)

var (
	errNotString = stderrors.New("value is not a string")
	errNotArray  = stderrors.New("value is not an array")

	// ErrDisabled is returned by Disabled when no provider is configured.
	ErrDisabled = stderrors.New("inference provider disabled")
)

// Service submits a prompt to a text-generation backend and returns its raw text.
// Implementations own transport concerns: timeouts, pooling, authentication.
type Service interface {
	SubmitPrompt(ctx context.Context, prompt string) (string, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, prompt string) (string, error)

// SubmitPrompt calls f.
func (f ServiceFunc) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Disabled is the Service used when provider is "none". Every call fails, so
// the pipeline degrades to the safe default.
var Disabled Service = ServiceFunc(func(context.Context, string) (string, error) {
	return "", ErrDisabled
})

// trimCodeFence strips one surrounding markdown code fence (``` or ```json).
func trimCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

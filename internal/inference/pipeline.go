// Package inference turns journal text into a tone classification by calling
// an external text-generation service and validating what comes back.
package inference

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/tone"
)

var defaultRecommendations = []string{
	"Consider taking a short break.",
	"Talk to someone you trust.",
	"Try deep breathing exercises.",
}

// DefaultRecommendations returns the fallback list used when the model gives none.
func DefaultRecommendations() []string {
	out := make([]string, len(defaultRecommendations))
	copy(out, defaultRecommendations)
	return out
}

// SafeDefault is the result returned when inference fails for any reason.
func SafeDefault() Result {
	return Result{Tone: tone.Unknown, Recommendations: []string{}}
}

// Pipeline builds the prompt, calls the service once, validates the output and
// applies the recommendation fallback.
type Pipeline struct {
	service Service
	logger  *zap.Logger
}

// NewPipeline creates a Pipeline. A nil service behaves like Disabled; a nil
// logger discards output.
func NewPipeline(service Service, logger *zap.Logger) *Pipeline {
	if service == nil {
		service = Disabled
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{service: service, logger: logger}
}

// Analyze classifies journalText. It never returns an error: any failure
// (service error, malformed output, panic in the service) is logged and
// degrades to SafeDefault, so saving an entry never depends on inference.
func (p *Pipeline) Analyze(ctx context.Context, journalText string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logFailure(errors.NewInternal(fmt.Errorf("panic during inference: %v", r)))
			result = SafeDefault()
		}
	}()

	raw, err := p.service.SubmitPrompt(ctx, BuildPrompt(journalText))
	if err != nil {
		p.logFailure(errors.NewServiceUnavailable(err))
		return SafeDefault()
	}

	result, err = Validate(raw)
	if err != nil {
		p.logFailure(err, zap.Int("output_chars", len(raw)))
		return SafeDefault()
	}

	if len(result.Recommendations) == 0 {
		result.Recommendations = DefaultRecommendations()
	}

	p.logger.Debug("tone inferred",
		zap.String("tone", result.Tone),
		zap.Int("recommendations", len(result.Recommendations)))
	return result
}

func (p *Pipeline) logFailure(err error, fields ...zap.Field) {
	code := string(errors.ErrInternal)
	var jErr *errors.JournalError
	if stderrors.As(err, &jErr) {
		code = string(jErr.Code)
	}
	fields = append([]zap.Field{zap.String("code", code), zap.Error(err)}, fields...)
	p.logger.Warn("tone inference failed, using safe default", fields...)
}

package ops

import (
	"context"
	"strings"

	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/inference"
	"github.com/empowerguard/moodjournal/internal/tone"
)

// AnalyzeInput contains parameters for the Analyze operation.
type AnalyzeInput struct {
	Text string
}

// AnalyzeOutput is the inference result with its canonical tone. Nothing is stored.
type AnalyzeOutput struct {
	inference.Result
	Canonical    string      `json:"canonical"`
	MoodValue    int         `json:"mood_value"`
	SupportLinks []tone.Link `json:"support_links"`
}

// Analyze runs inference on text without saving an entry.
func Analyze(ctx context.Context, analyzer Analyzer, input AnalyzeInput) (*AnalyzeOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	result := analyzer.Analyze(ctx, input.Text)
	t := tone.Normalize(result.Tone)
	mood, _ := t.MoodValue()

	links := tone.SupportLinks(result.Tone)
	if links == nil {
		links = []tone.Link{}
	}
	return &AnalyzeOutput{
		Result:       result,
		Canonical:    t.String(),
		MoodValue:    mood,
		SupportLinks: links,
	}, nil
}

// NormalizeOutput describes how a raw tone label maps onto the taxonomy.
type NormalizeOutput struct {
	Input      string `json:"input"`
	Tone       string `json:"tone"`
	Recognized bool   `json:"recognized"`
	MoodValue  int    `json:"mood_value"`
}

// NormalizeTone maps a raw label onto the canonical tone set.
func NormalizeTone(raw string) *NormalizeOutput {
	t := tone.Normalize(raw)
	mood, _ := t.MoodValue()
	return &NormalizeOutput{
		Input:      raw,
		Tone:       t.String(),
		Recognized: t.Recognized(),
		MoodValue:  mood,
	}
}

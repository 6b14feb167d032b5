package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAIService submits prompts through the OpenAI Responses API with a
// strict JSON schema for Result.
type OpenAIService struct {
	client          openai.Client
	model           string
	temperature     float64
	maxOutputTokens int64
	timeout         time.Duration
}

// NewOpenAIService creates an OpenAIService. Extra request options (base URL,
// HTTP client) are passed through to the SDK.
func NewOpenAIService(apiKey string, opts Options, extra ...option.RequestOption) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)
	return &OpenAIService{
		client:          openai.NewClient(reqOpts...),
		model:           model,
		temperature:     opts.Temperature,
		maxOutputTokens: int64(opts.MaxOutputTokens),
		timeout:         opts.Timeout,
	}, nil
}

// SubmitPrompt sends prompt as a single user message and returns the output text.
func (s *OpenAIService) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(s.maxOutputTokens),
		Temperature:     openai.Float(s.temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "ToneAnalysis",
					Schema:      resultSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Journal entry tone and recommendations"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	return trimCodeFence(resp.OutputText()), nil
}

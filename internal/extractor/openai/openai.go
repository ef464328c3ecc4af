package openai

import (
	"context"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/logger"
	"voxform/internal/port"
)

// Name is the registry identifier of the cloud text extractor.
const Name = "openai"

// Extractor implements port.FieldExtractor using OpenAI chat completions.
type Extractor struct {
	client        oai.Client
	apiKey        string
	model         string
	fallbackModel string
	temperature   float64
	maxTokens     int
}

// New creates a cloud text extractor. A missing API key is not an error;
// the extractor then reports itself unavailable.
func New(cfg *config.OpenAIConfig) *Extractor {
	return NewWithEndpoint(cfg, cfg.BaseURL)
}

// NewWithEndpoint creates an extractor pointing at a custom API base URL (for testing).
func NewWithEndpoint(cfg *config.OpenAIConfig, endpoint string) *Extractor {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}
	return &Extractor{
		client:        NewClient(cfg.APIKey, endpoint, cfg.Timeout),
		apiKey:        cfg.APIKey,
		model:         model,
		fallbackModel: cfg.FallbackModel,
		temperature:   cfg.Temperature,
		maxTokens:     maxTokens,
	}
}

func (e *Extractor) Name() string { return Name }

func (e *Extractor) Supports(kind domain.InputKind) bool { return kind == domain.InputText }

func (e *Extractor) Available(context.Context) error {
	if e.apiKey == "" {
		return extractor.Unavailable("no API key configured")
	}
	return nil
}

// Extract asks the model for a JSON object of schema fields. If the primary
// model is rejected, the fallback model is tried exactly once.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if input.Kind != domain.InputText {
		return nil, fmt.Errorf("%w: %s", extractor.ErrUnsupportedInput, input.Kind)
	}

	prompt := extractor.BuildTextPrompt(input.Text)
	model := e.model
	content, err := e.complete(ctx, model, prompt)
	if err != nil && e.fallbackModel != "" && e.fallbackModel != model && IsModelRejected(err) {
		logger.Warn(ctx, "openai.Extract: model rejected, retrying with fallback",
			"model", model, "fallback", e.fallbackModel, "error", err)
		model = e.fallbackModel
		content, err = e.complete(ctx, model, prompt)
	}
	if err != nil {
		return nil, ClassifyError(Name, err)
	}

	fields, _, err := extractor.ParseFieldsJSON(content)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	logger.Debug(ctx, "openai.Extract: done", "model", model, "fields", fields.Keys())
	return &port.ExtractOutput{Fields: fields, ModelUsed: model}, nil
}

func (e *Extractor) complete(ctx context.Context, model, prompt string) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(extractor.SystemPrompt),
			oai.UserMessage(prompt),
		},
		Temperature:         param.NewOpt(e.temperature),
		MaxCompletionTokens: param.NewOpt(int64(e.maxTokens)),
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return FirstContent(resp)
}

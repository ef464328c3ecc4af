// Package ollama provides the local LLM text extractor, talking to an Ollama
// server through any-llm-go.
package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/logger"
	"voxform/internal/port"
)

// Name is the registry identifier of the local text extractor.
const Name = "ollama"

const temperature = 0.1

type completeFunc func(ctx context.Context, params anyllmlib.CompletionParams) (string, error)

// Extractor implements port.FieldExtractor against a local Ollama server.
type Extractor struct {
	complete      completeFunc
	model         string
	fallbackModel string
	timeout       time.Duration
	probe         *extractor.HTTPProbe
}

// New creates a local extractor. The server is not contacted until the first probe.
func New(cfg *config.OllamaConfig) (*Extractor, error) {
	backend, err := ollama.New(anyllmlib.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("ollama: create backend: %w", err)
	}
	complete := func(ctx context.Context, params anyllmlib.CompletionParams) (string, error) {
		resp, err := backend.Completion(ctx, params)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%w: empty choices in response", extractor.ErrMalformedResponse)
		}
		return resp.Choices[0].Message.ContentString(), nil
	}
	return newExtractor(cfg, complete), nil
}

func newExtractor(cfg *config.OllamaConfig, complete completeFunc) *Extractor {
	model := cfg.Model
	if model == "" {
		model = "gpt-oss:20b"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ttl := cfg.ProbeTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Extractor{
		complete:      complete,
		model:         model,
		fallbackModel: cfg.FallbackModel,
		timeout:       timeout,
		probe:         extractor.NewHTTPProbe(strings.TrimRight(cfg.BaseURL, "/")+"/api/tags", ttl),
	}
}

func (e *Extractor) Name() string { return Name }

func (e *Extractor) Supports(kind domain.InputKind) bool { return kind == domain.InputText }

// Available reports whether the Ollama server answers /api/tags.
func (e *Extractor) Available(ctx context.Context) error {
	return e.probe.Check(ctx)
}

// Extract sends the extraction prompt to the local model with a bounded timeout.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if input.Kind != domain.InputText {
		return nil, fmt.Errorf("%w: %s", extractor.ErrUnsupportedInput, input.Kind)
	}

	prompt := extractor.BuildTextPrompt(input.Text)
	model := e.model
	content, err := e.call(ctx, model, prompt)
	if err != nil && e.fallbackModel != "" && e.fallbackModel != model && isModelMissing(err) {
		logger.Warn(ctx, "ollama.Extract: model missing, retrying with fallback",
			"model", model, "fallback", e.fallbackModel, "error", err)
		model = e.fallbackModel
		content, err = e.call(ctx, model, prompt)
	}
	if err != nil {
		return nil, fmt.Errorf("ollama: completion: %w", err)
	}

	fields, _, err := extractor.ParseFieldsJSON(content)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	logger.Debug(ctx, "ollama.Extract: done", "model", model, "fields", fields.Keys())
	return &port.ExtractOutput{Fields: fields, ModelUsed: model}, nil
}

func (e *Extractor) call(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	temp := temperature
	return e.complete(ctx, anyllmlib.CompletionParams{
		Model: model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: extractor.SystemPrompt},
			{Role: anyllmlib.RoleUser, Content: prompt},
		},
		Temperature: &temp,
		// Sent to Ollama as format=json.
		ResponseFormat: &anyllmlib.ResponseFormat{Type: "json_object"},
	})
}

func isModelMissing(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") && strings.Contains(msg, "model")
}

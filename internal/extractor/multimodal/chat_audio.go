// Package multimodal provides the audio extractors. Each backend is a
// separate chain entry: a multimodal chat model that hears the recording
// directly, or a transcription server followed by a text extractor.
package multimodal

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/extractor"
	openaix "voxform/internal/extractor/openai"
	"voxform/internal/logger"
	"voxform/internal/port"
)

// Registry identifiers.
const (
	OpenAIAudioName = "openai_audio"
	VLLMName        = "vllm"
)

const audioMaxTokens = 500

// ChatAudioExtractor sends the recording as an input_audio content part to an
// OpenAI-compatible chat endpoint and reads back transcript plus fields.
type ChatAudioExtractor struct {
	name      string
	client    oai.Client
	model     string
	hasKey    bool
	probe     *extractor.HTTPProbe
	formats   map[domain.AudioFormat]bool
	maxTokens int64
}

// NewOpenAIAudio creates the cloud multimodal extractor.
func NewOpenAIAudio(cfg *config.OpenAIConfig) *ChatAudioExtractor {
	model := cfg.AudioModel
	if model == "" {
		model = "gpt-4o-audio-preview"
	}
	return &ChatAudioExtractor{
		name:      OpenAIAudioName,
		client:    openaix.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:     model,
		hasKey:    cfg.APIKey != "",
		formats:   map[domain.AudioFormat]bool{domain.AudioWAV: true, domain.AudioMP3: true},
		maxTokens: audioMaxTokens,
	}
}

// NewVLLM creates the extractor for a local vLLM server hosting an audio model.
func NewVLLM(cfg *config.VLLMConfig) *ChatAudioExtractor {
	model := cfg.Model
	if model == "" {
		model = "Qwen/Qwen2-Audio-7B-Instruct"
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &ChatAudioExtractor{
		name:      VLLMName,
		client:    openaix.NewClient("EMPTY", base+"/v1", cfg.Timeout),
		model:     model,
		hasKey:    true,
		probe:     extractor.NewHTTPProbe(base+"/health", 30*time.Second),
		formats:   map[domain.AudioFormat]bool{domain.AudioWAV: true, domain.AudioMP3: true},
		maxTokens: audioMaxTokens,
	}
}

func (e *ChatAudioExtractor) Name() string { return e.name }

func (e *ChatAudioExtractor) Supports(kind domain.InputKind) bool { return kind == domain.InputAudio }

func (e *ChatAudioExtractor) Available(ctx context.Context) error {
	if !e.hasKey {
		return extractor.Unavailable("no API key configured")
	}
	if e.probe != nil {
		return e.probe.Check(ctx)
	}
	return nil
}

// Extract transcribes and extracts in one round trip.
func (e *ChatAudioExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if input.Kind != domain.InputAudio || len(input.Audio) == 0 {
		return nil, fmt.Errorf("%w: %s needs audio", extractor.ErrUnsupportedInput, e.name)
	}
	format := input.AudioFormat
	if format == "" {
		format = domain.AudioWAV
	}
	if !e.formats[format] {
		return nil, fmt.Errorf("%w: %s does not accept %s audio", extractor.ErrUnsupportedInput, e.name, format)
	}

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(e.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage([]oai.ChatCompletionContentPartUnionParam{
				oai.TextContentPart(extractor.BuildAudioPrompt()),
				oai.InputAudioContentPart(oai.ChatCompletionContentPartInputAudioInputAudioParam{
					Data:   base64.StdEncoding.EncodeToString(input.Audio),
					Format: string(format),
				}),
			}),
		},
		MaxTokens:   param.NewOpt(e.maxTokens),
		Temperature: param.NewOpt(0.1),
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, openaix.ClassifyError(e.name, err)
	}
	content, err := openaix.FirstContent(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.name, err)
	}

	fields, transcript, err := extractor.ParseFieldsJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.name, err)
	}
	logger.Debug(ctx, "multimodal.Extract: done", "provider", e.name, "fields", fields.Keys(),
		"transcript_len", len(transcript))
	return &port.ExtractOutput{Fields: fields, Transcript: transcript, ModelUsed: e.model}, nil
}

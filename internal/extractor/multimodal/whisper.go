package multimodal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/logger"
	"voxform/internal/port"
)

// WhisperName is the registry identifier of the transcription pipeline.
const WhisperName = "whisper"

// WhisperClient implements port.Transcriber against a whisper.cpp HTTP server.
type WhisperClient struct {
	baseURL  string
	language string
	client   *http.Client
}

// NewWhisperClient creates a transcription client.
func NewWhisperClient(cfg *config.WhisperConfig) *WhisperClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WhisperClient{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		language: cfg.Language,
		client:   &http.Client{Timeout: timeout},
	}
}

type whisperResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Transcribe posts the recording to /inference and returns the recognised text.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, format domain.AudioFormat) (string, error) {
	if format == "" {
		format = domain.AudioWAV
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "audio."+string(format))
	if err != nil {
		return "", fmt.Errorf("whisper: creating form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", fmt.Errorf("whisper: writing audio: %w", err)
	}
	_ = mw.WriteField("response_format", "json")
	if c.language != "" {
		_ = mw.WriteField("language", c.language)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper: closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("whisper: creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("whisper: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper: status %d: %s", resp.StatusCode, extractor.Truncate(string(respBody), 200))
	}

	var out whisperResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("whisper: %w: %v", extractor.ErrMalformedResponse, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("whisper: %s", out.Error)
	}
	return strings.TrimSpace(out.Text), nil
}

// WhisperExtractor transcribes audio, then runs the transcript through a text
// extractor. If that extractor is down or fails, the fallback is used.
type WhisperExtractor struct {
	transcriber port.Transcriber
	text        port.FieldExtractor
	fallback    port.FieldExtractor
	probe       *extractor.HTTPProbe
}

// NewWhisperExtractor wires a transcriber to text and fallback extractors. Either may be nil.
func NewWhisperExtractor(cfg *config.WhisperConfig, transcriber port.Transcriber, text, fallback port.FieldExtractor) *WhisperExtractor {
	return &WhisperExtractor{
		transcriber: transcriber,
		text:        text,
		fallback:    fallback,
		probe:       extractor.NewHTTPProbe(strings.TrimRight(cfg.URL, "/")+"/", 30*time.Second),
	}
}

func (e *WhisperExtractor) Name() string { return WhisperName }

func (e *WhisperExtractor) Supports(kind domain.InputKind) bool { return kind == domain.InputAudio }

func (e *WhisperExtractor) Available(ctx context.Context) error {
	return e.probe.Check(ctx)
}

// Extract always returns the transcript on success, even when no fields were found.
func (e *WhisperExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if input.Kind != domain.InputAudio || len(input.Audio) == 0 {
		return nil, fmt.Errorf("%w: whisper needs audio", extractor.ErrUnsupportedInput)
	}

	transcript, err := e.transcriber.Transcribe(ctx, input.Audio, input.AudioFormat)
	if err != nil {
		return nil, err
	}
	out := &port.ExtractOutput{Fields: domain.ExtractedFields{}, Transcript: transcript}
	if transcript == "" {
		return out, nil
	}

	textIn := port.ExtractInput{Kind: domain.InputText, Text: transcript}
	for _, ext := range []port.FieldExtractor{e.text, e.fallback} {
		if ext == nil {
			continue
		}
		if err := ext.Available(ctx); err != nil {
			logger.Debug(ctx, "whisper.Extract: text extractor unavailable", "provider", ext.Name(), "reason", err)
			continue
		}
		res, err := ext.Extract(ctx, textIn)
		if err == nil {
			if res != nil && res.Fields != nil {
				out.Fields = res.Fields
			}
			out.ModelUsed = WhisperName + "+" + ext.Name()
			return out, nil
		}
		if !errors.Is(err, extractor.ErrNoMatch) {
			logger.Warn(ctx, "whisper.Extract: text extractor failed", "provider", ext.Name(), "error", err)
		}
	}
	return out, nil
}

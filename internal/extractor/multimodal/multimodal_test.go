package multimodal_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/extractor/multimodal"
	"voxform/internal/extractor/pattern"
	"voxform/internal/port"
	"voxform/mocks"
)

var wavBytes = []byte("RIFF\x24\x00\x00\x00WAVEfmt ")

func audioInput(format domain.AudioFormat) port.ExtractInput {
	return port.ExtractInput{Kind: domain.InputAudio, Audio: wavBytes, AudioFormat: format}
}

func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-audio",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-audio-preview",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestOpenAIAudio_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o-audio-preview", reqBody["model"])

		messages := reqBody["messages"].([]interface{})
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		assert.Len(t, content, 2)
		assert.Equal(t, "text", content[0].(map[string]interface{})["type"])
		audio := content[1].(map[string]interface{})
		assert.Equal(t, "input_audio", audio["type"])
		inputAudio := audio["input_audio"].(map[string]interface{})
		assert.Equal(t, "wav", inputAudio["format"])
		assert.Equal(t, base64.StdEncoding.EncodeToString(wavBytes), inputAudio["data"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(
			`{"transcript": "my name is john doe", "name": "John Doe", "email": null, "phone": null, "address": null}`))
	}))
	defer server.Close()

	e := multimodal.NewOpenAIAudio(&config.OpenAIConfig{APIKey: "k", BaseURL: server.URL, Timeout: 5 * time.Second})

	out, err := e.Extract(context.Background(), audioInput(domain.AudioWAV))

	require.NoError(t, err)
	assert.Equal(t, "my name is john doe", out.Transcript)
	assert.Equal(t, domain.ExtractedFields{domain.FieldFullName: "John Doe"}, out.Fields)
	assert.Equal(t, "gpt-4o-audio-preview", out.ModelUsed)
}

func TestOpenAIAudio_RejectsUnsupportedFormatWithoutCalling(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	e := multimodal.NewOpenAIAudio(&config.OpenAIConfig{APIKey: "k", BaseURL: server.URL})

	_, err := e.Extract(context.Background(), audioInput(domain.AudioWebM))

	assert.ErrorIs(t, err, extractor.ErrUnsupportedInput)
	assert.False(t, called)
}

func TestOpenAIAudio_Availability(t *testing.T) {
	e := multimodal.NewOpenAIAudio(&config.OpenAIConfig{})

	assert.Equal(t, "openai_audio", e.Name())
	assert.ErrorIs(t, e.Available(context.Background()), extractor.ErrUnavailable)
	assert.True(t, e.Supports(domain.InputAudio))
	assert.False(t, e.Supports(domain.InputText))
}

func TestVLLM_ProbeAndExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/v1/chat/completions":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(chatResponse(
				"```json\n{\"transcript\": \"call me at 555 123 4567\", \"phone\": \"555-123-4567\"}\n```"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	e := multimodal.NewVLLM(&config.VLLMConfig{BaseURL: server.URL, Model: "Qwen/Qwen2-Audio-7B-Instruct"})

	require.NoError(t, e.Available(context.Background()))
	out, err := e.Extract(context.Background(), audioInput(""))

	require.NoError(t, err)
	assert.Equal(t, "555-123-4567", out.Fields.Get(domain.FieldPhone))
	assert.Equal(t, "call me at 555 123 4567", out.Transcript)
}

func TestWhisperClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inference", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "en", r.FormValue("language"))
		assert.Equal(t, "json", r.FormValue("response_format"))

		file, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, wavBytes, data)
			assert.Equal(t, "audio.wav", header.Filename)
		}
		_, _ = w.Write([]byte(`{"text": "  my name is jane roe \n"}`))
	}))
	defer server.Close()

	c := multimodal.NewWhisperClient(&config.WhisperConfig{URL: server.URL, Language: "en"})

	text, err := c.Transcribe(context.Background(), wavBytes, domain.AudioWAV)

	require.NoError(t, err)
	assert.Equal(t, "my name is jane roe", text)
}

func TestWhisperClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not loaded"))
	}))
	defer server.Close()

	_, err := multimodal.NewWhisperClient(&config.WhisperConfig{URL: server.URL}).
		Transcribe(context.Background(), wavBytes, domain.AudioWAV)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, []byte, domain.AudioFormat) (string, error) {
	return f.text, f.err
}

func TestWhisperExtractor_UsesTextExtractor(t *testing.T) {
	llm := mocks.NewMockFieldExtractor("ollama")
	llm.On("Extract", mock.Anything, port.ExtractInput{Kind: domain.InputText, Text: "my name is jane roe"}).
		Return(&port.ExtractOutput{Fields: domain.ExtractedFields{domain.FieldFullName: "Jane Roe"}}, nil)

	e := multimodal.NewWhisperExtractor(&config.WhisperConfig{}, fakeTranscriber{text: "my name is jane roe"}, llm, pattern.New())

	out, err := e.Extract(context.Background(), audioInput(domain.AudioWAV))

	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", out.Fields.Get(domain.FieldFullName))
	assert.Equal(t, "whisper+ollama", out.ModelUsed)
}

func TestWhisperExtractor_FallsBackToPatternsWhenLLMDown(t *testing.T) {
	llm := new(mocks.MockFieldExtractor)
	llm.On("Name").Return("ollama")
	llm.On("Available", mock.Anything).Return(extractor.Unavailable("server not reachable"))

	e := multimodal.NewWhisperExtractor(&config.WhisperConfig{},
		fakeTranscriber{text: "My name is John Doe, email is john at example dot com"}, llm, pattern.New())

	out, err := e.Extract(context.Background(), audioInput(domain.AudioWAV))

	require.NoError(t, err)
	assert.Equal(t, "John Doe", out.Fields.Get(domain.FieldFullName))
	assert.Equal(t, "john@example.com", out.Fields.Get(domain.FieldEmail))
	assert.Equal(t, "whisper+demo", out.ModelUsed)
	llm.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestWhisperExtractor_TranscriptWithoutFields(t *testing.T) {
	e := multimodal.NewWhisperExtractor(&config.WhisperConfig{}, fakeTranscriber{text: "hello there"}, nil, pattern.New())

	out, err := e.Extract(context.Background(), audioInput(domain.AudioWAV))

	require.NoError(t, err)
	assert.Equal(t, "hello there", out.Transcript)
	assert.Zero(t, out.Fields.Len())
}

func TestWhisperExtractor_TranscriptionFailure(t *testing.T) {
	e := multimodal.NewWhisperExtractor(&config.WhisperConfig{}, fakeTranscriber{err: errors.New("whisper: status 500")}, nil, pattern.New())

	_, err := e.Extract(context.Background(), audioInput(domain.AudioWAV))

	assert.Error(t, err)
}

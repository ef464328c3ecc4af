package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/extractor/openai"
	"voxform/internal/port"
)

func newTestExtractor(serverURL string) *openai.Extractor {
	cfg := &config.OpenAIConfig{
		APIKey:        "test-openai-key",
		Model:         "gpt-4o-mini",
		FallbackModel: "gpt-3.5-turbo",
		Temperature:   0.1,
		MaxTokens:     150,
		Timeout:       5 * time.Second,
	}
	return openai.NewWithEndpoint(cfg, serverURL)
}

func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func textInput(text string) port.ExtractInput {
	return port.ExtractInput{Kind: domain.InputText, Text: text}
}

func TestExtract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o-mini", reqBody["model"])
		assert.Equal(t, float64(150), reqBody["max_completion_tokens"])
		format := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", format["type"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
		user := messages[1].(map[string]interface{})
		assert.Equal(t, "user", user["role"])
		assert.Contains(t, user["content"], "john at example dot com")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"name": "John Doe", "email": "john@example.com"}`))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(),
		textInput("My name is John Doe, email is john at example dot com"))

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", out.ModelUsed)
	assert.Equal(t, domain.ExtractedFields{
		domain.FieldFullName: "John Doe",
		domain.FieldEmail:    "john@example.com",
	}, out.Fields)
}

func TestExtract_EmptyObjectIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{}`))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), textInput("hello"))

	require.NoError(t, err)
	assert.Zero(t, out.Fields.Len())
}

func TestExtract_SalvagesWrappedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("Here you go: {\"phone\": \"5551234567\"} hope that helps"))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), textInput("five five five"))

	require.NoError(t, err)
	assert.Equal(t, "5551234567", out.Fields.Get(domain.FieldPhone))
}

func TestExtract_MalformedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("I cannot help with that."))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), textInput("hello"))

	assert.ErrorIs(t, err, extractor.ErrMalformedResponse)
}

func TestExtract_FallbackModelOnRejection(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)

		w.Header().Set("Content-Type", "application/json")
		if reqBody["model"] == "gpt-4o-mini" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"The model does not exist","type":"invalid_request_error","code":"model_not_found"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse(`{"name": "Jane Roe"}`))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), textInput("I am Jane Roe"))

	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", out.ModelUsed)
	assert.Equal(t, "Jane Roe", out.Fields.Get(domain.FieldFullName))
	assert.Equal(t, int32(2), calls.Load())
}

func TestExtract_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"internal error","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), textInput("hello"))

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExtract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), textInput("hello"))

	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 7*time.Second, rlErr.RetryAfter)
	assert.Equal(t, "openai", rlErr.Provider)
}

func TestAvailable_RequiresAPIKey(t *testing.T) {
	e := openai.New(&config.OpenAIConfig{Model: "gpt-4o-mini"})

	err := e.Available(context.Background())

	assert.ErrorIs(t, err, extractor.ErrUnavailable)
	assert.False(t, e.Supports(domain.InputAudio))
	assert.NoError(t, newTestExtractor("http://127.0.0.1:1").Available(context.Background()))
}

// Package openai provides the cloud text extractor backed by the OpenAI Chat
// Completions API, plus client helpers shared by the OpenAI-compatible audio
// backends.
package openai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"voxform/internal/extractor"
)

// NewClient builds an SDK client. SDK retries are off; the provider chain decides what happens next.
func NewClient(apiKey, baseURL string, timeout time.Duration) oai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	if timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	return oai.NewClient(opts...)
}

// ClassifyError maps HTTP 429 to a RateLimitError and wraps everything else with the provider name.
func ClassifyError(provider string, err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		retryAfter := 0
		if apiErr.Response != nil {
			retryAfter = extractor.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
		}
		return extractor.NewRateLimitError(provider, err, retryAfter)
	}
	return fmt.Errorf("%s: chat completion: %w", provider, err)
}

// IsModelRejected reports whether the API refused the requested model itself.
func IsModelRejected(err error) bool {
	var apiErr *oai.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch {
	case apiErr.StatusCode == http.StatusNotFound, apiErr.StatusCode == http.StatusForbidden:
		return true
	case apiErr.Code == "model_not_found":
		return true
	}
	return false
}

// FirstContent returns the text of the first choice.
func FirstContent(resp *oai.ChatCompletion) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices in response", extractor.ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

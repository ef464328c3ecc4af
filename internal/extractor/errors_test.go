package extractor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"voxform/internal/extractor"
)

func TestRateLimitError_DefaultRetryAfter(t *testing.T) {
	err := extractor.NewRateLimitError("openai", errors.New("429"), 0)

	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "openai rate limited")
}

func TestRateLimitError_Unwrap(t *testing.T) {
	base := errors.New("base")
	err := extractor.NewRateLimitError("openai", base, 5)

	assert.ErrorIs(t, err, base)

	var rl *extractor.RateLimitError
	assert.True(t, errors.As(err, &rl))
	assert.Equal(t, 5*time.Second, rl.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 30, extractor.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, extractor.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, extractor.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestUnavailable(t *testing.T) {
	err := extractor.Unavailable("no api key for %s", "openai")

	assert.ErrorIs(t, err, extractor.ErrUnavailable)
	assert.Contains(t, err.Error(), "no api key for openai")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", extractor.Truncate("abc", 5))
	assert.Equal(t, "ab...", extractor.Truncate("abcdef", 2))
}

func TestBuildTextPrompt_QuotesInput(t *testing.T) {
	p := extractor.BuildTextPrompt(`say "hi"`)

	assert.Contains(t, p, `User input: "say \"hi\""`)
	assert.Contains(t, p, "name")
	assert.Contains(t, p, "address")
}

package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voxform/internal/domain"
	"voxform/internal/validator"
)

func TestScore_WellFormedEmailNoTranscript(t *testing.T) {
	s := validator.Score(domain.FieldEmail, "john@example.com", "openai", "")

	assert.InDelta(t, 0.88, s, 0.001)
	assert.Equal(t, "good", validator.Label(s))
}

func TestScore_ValueInTranscript(t *testing.T) {
	s := validator.Score(domain.FieldFullName, "John Doe", "cache", "my name is john doe")

	assert.InDelta(t, 0.96, s, 0.001)
	assert.Equal(t, "high", validator.Label(s))
}

func TestScore_PoorValueUnknownProvider(t *testing.T) {
	s := validator.Score(domain.FieldPhone, "123", "mystery", "")

	assert.InDelta(t, 0.49, s, 0.001)
	assert.False(t, validator.ShouldAccept(s))
	assert.Equal(t, "low", validator.Label(s))
}

func TestScore_KeywordContext(t *testing.T) {
	withKeyword := validator.Score(domain.FieldPhone, "(555) 123-4567", "demo", "my phone is five five five")
	without := validator.Score(domain.FieldPhone, "(555) 123-4567", "demo", "hello there")

	assert.Greater(t, withKeyword, without)
}

func TestScoreFields(t *testing.T) {
	out := validator.ScoreFields(domain.ExtractedFields{
		domain.FieldEmail: "a@b.co",
	}, "demo", "")

	assert.Len(t, out, 1)
	assert.Contains(t, out, "email")
	assert.NotEmpty(t, out["email"].Label)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "high", validator.Label(0.95))
	assert.Equal(t, "good", validator.Label(0.7))
	assert.Equal(t, "medium", validator.Label(0.5))
	assert.Equal(t, "low", validator.Label(0.1))
}

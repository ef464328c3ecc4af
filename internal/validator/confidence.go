package validator

import (
	"math"
	"strings"

	"voxform/internal/domain"
)

const (
	weightBase    = 0.4
	weightFormat  = 0.3
	weightLength  = 0.1
	weightContext = 0.2

	// AcceptThreshold is the minimum score a value needs to be trusted without confirmation.
	AcceptThreshold = 0.5
)

var providerBase = map[string]float64{
	"openai":       0.85,
	"ollama":       0.75,
	"demo":         0.70,
	"openai_audio": 0.80,
	"vllm":         0.80,
	"whisper":      0.80,
	"cache":        0.90,
}

type lengthRange struct{ min, max int }

var fieldLengths = map[domain.FieldName]lengthRange{
	domain.FieldFullName: {3, 60},
	domain.FieldEmail:    {5, 100},
	domain.FieldPhone:    {7, 20},
	domain.FieldAddress:  {10, 200},
}

var fieldKeywords = map[domain.FieldName][]string{
	domain.FieldFullName: {"name", "i'm", "i am", "call me"},
	domain.FieldEmail:    {"email", "e-mail", "mail", "@", " at "},
	domain.FieldPhone:    {"phone", "number", "cell", "mobile", "call"},
	domain.FieldAddress:  {"address", "live", "street", "avenue", "road", "lane"},
}

// Score rates an extracted value in [0,1]. transcript may be empty.
func Score(field domain.FieldName, value, provider, transcript string) float64 {
	base, ok := providerBase[provider]
	if !ok {
		base = 0.6
	}
	s := base*weightBase +
		formatScore(field, value)*weightFormat +
		lengthScore(field, value)*weightLength +
		contextScore(field, value, transcript)*weightContext
	return math.Round(s*100) / 100
}

// Label buckets a score for display.
func Label(score float64) string {
	switch {
	case score >= 0.9:
		return "high"
	case score >= 0.7:
		return "good"
	case score >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

// ShouldAccept reports whether a score clears AcceptThreshold.
func ShouldAccept(score float64) bool {
	return score >= AcceptThreshold
}

// ScoreFields scores every present field.
func ScoreFields(fields domain.ExtractedFields, provider, transcript string) map[string]domain.FieldConfidence {
	out := make(map[string]domain.FieldConfidence, len(fields))
	for _, f := range fields.Keys() {
		s := Score(f, fields.Get(f), provider, transcript)
		out[string(f)] = domain.FieldConfidence{Score: s, Label: Label(s)}
	}
	return out
}

func formatScore(field domain.FieldName, v string) float64 {
	switch field {
	case domain.FieldEmail:
		switch {
		case emailRe.MatchString(v):
			return 1.0
		case strings.Contains(v, "@"):
			return 0.5
		}
		return 0.1
	case domain.FieldPhone:
		n := len(nonDigitRe.ReplaceAllString(v, ""))
		switch {
		case n == 10 || (n > 10 && n <= 15 && strings.HasPrefix(v, "+")):
			return 1.0
		case n >= 10:
			return 0.9
		case n >= 7:
			return 0.6
		}
		return 0.2
	case domain.FieldFullName:
		if !nameRe.MatchString(v) {
			return 0.3
		}
		if len(strings.Fields(v)) >= 2 {
			return 1.0
		}
		return 0.7
	case domain.FieldAddress:
		hasDigit, hasLetter := digitRe.MatchString(v), letterRe.MatchString(v)
		switch {
		case hasDigit && hasLetter && len(strings.Fields(v)) >= 3:
			return 1.0
		case hasDigit && hasLetter:
			return 0.7
		}
		return 0.3
	}
	return 0.5
}

func lengthScore(field domain.FieldName, v string) float64 {
	r, ok := fieldLengths[field]
	if !ok {
		return 0.5
	}
	n := len(v)
	switch {
	case n >= r.min && n <= r.max:
		return 1.0
	case n >= r.min/2 && n <= r.max*2:
		return 0.5
	}
	return 0.2
}

func contextScore(field domain.FieldName, v, transcript string) float64 {
	if transcript == "" {
		return 0.7
	}
	t := strings.ToLower(transcript)
	if strings.Contains(t, strings.ToLower(v)) {
		return 1.0
	}
	for _, kw := range fieldKeywords[field] {
		if strings.Contains(t, kw) {
			return 0.8
		}
	}
	return 0.5
}

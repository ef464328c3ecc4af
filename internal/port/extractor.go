package port

import (
	"context"

	"voxform/internal/domain"
)

// ExtractInput is one utterance handed to the provider chain: text, or raw audio.
type ExtractInput struct {
	Kind        domain.InputKind
	Text        string
	Audio       []byte
	AudioFormat domain.AudioFormat
}

// ExtractOutput is a provider's normalized answer. Zero fields is a valid result.
type ExtractOutput struct {
	Fields     domain.ExtractedFields
	Transcript string
	ModelUsed  string
}

// FieldExtractor is one extraction strategy in the provider chain.
type FieldExtractor interface {
	// Name is the identifier used in configuration and diagnostics.
	Name() string
	// Supports reports whether the provider accepts the input kind at all.
	Supports(kind domain.InputKind) bool
	// Available checks the provider's precondition (credential, reachable server).
	// A non-nil error means the chain skips the provider without attempting it.
	Available(ctx context.Context) error
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format domain.AudioFormat) (string, error)
}

// PatternLearner records successful extractions so similar utterances can be
// answered without a model call.
type PatternLearner interface {
	Learn(ctx context.Context, text string, fields domain.ExtractedFields, provider string)
	Stats() domain.CacheStats
	// Clear forgets every learned template.
	Clear() error
}

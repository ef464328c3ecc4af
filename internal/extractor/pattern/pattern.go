// Package pattern extracts form fields from text with regular expressions.
// It needs no network and is always available, so it is the usual last
// resort in the text chain.
package pattern

import (
	"context"
	"fmt"

	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/logger"
	"voxform/internal/port"
)

// Name is the registry identifier of the pattern extractor.
const Name = "demo"

const modelName = "regex-patterns"

// Extractor implements port.FieldExtractor with deterministic regex rules.
type Extractor struct{}

// New creates a pattern Extractor.
func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Name() string { return Name }

func (e *Extractor) Supports(kind domain.InputKind) bool {
	return kind == domain.InputText
}

func (e *Extractor) Available(context.Context) error { return nil }

// Extract runs every field rule over the text. A field without a match is
// absent; an utterance with no matches at all is an empty success.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if input.Kind != domain.InputText {
		return nil, fmt.Errorf("%w: %s", extractor.ErrUnsupportedInput, input.Kind)
	}

	fields := ExtractFields(input.Text)
	logger.Debug(ctx, "pattern.Extract: done", "fields", fields.Keys())
	return &port.ExtractOutput{Fields: fields, ModelUsed: modelName}, nil
}

// ExtractFields applies the name, email, phone and address rules to text.
func ExtractFields(text string) domain.ExtractedFields {
	fields := domain.ExtractedFields{}
	if v, ok := findName(text); ok {
		fields.Set(domain.FieldFullName, v)
	}
	if v, ok := findEmail(text); ok {
		fields.Set(domain.FieldEmail, v)
	}
	if v, ok := findPhone(text); ok {
		fields.Set(domain.FieldPhone, v)
	}
	if v, ok := findAddress(text); ok {
		fields.Set(domain.FieldAddress, v)
	}
	return fields
}

package pattern_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/extractor/pattern"
	"voxform/internal/port"
)

func extract(t *testing.T, text string) domain.ExtractedFields {
	t.Helper()
	out, err := pattern.New().Extract(context.Background(), port.ExtractInput{Kind: domain.InputText, Text: text})
	require.NoError(t, err)
	return out.Fields
}

func TestExtract_NameAndSpokenEmail(t *testing.T) {
	fields := extract(t, "My name is John Doe, email is john at example dot com")

	assert.Equal(t, domain.ExtractedFields{
		domain.FieldFullName: "John Doe",
		domain.FieldEmail:    "john@example.com",
	}, fields)
}

func TestExtract_Fields(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.ExtractedFields
	}{
		{
			name: "introduction with grouped phone",
			text: "I'm Jane Smith and my phone is 555 123 4567",
			want: domain.ExtractedFields{domain.FieldFullName: "Jane Smith", domain.FieldPhone: "555-123-4567"},
		},
		{
			name: "spoken digits",
			text: "call me at five five five one two three four five six seven",
			want: domain.ExtractedFields{domain.FieldPhone: "555-123-4567"},
		},
		{
			name: "address cut before email clause",
			text: "My address is 123 Main Street and my email is jane at gmail dot com",
			want: domain.ExtractedFields{domain.FieldAddress: "123 Main Street", domain.FieldEmail: "jane@gmail.com"},
		},
		{
			name: "spoken house number",
			text: "I live at twelve oak lane.",
			want: domain.ExtractedFields{domain.FieldAddress: "12 Oak Lane"},
		},
		{
			name: "mail provider typo corrected",
			text: "reach me at john.doe@gmial.com",
			want: domain.ExtractedFields{domain.FieldEmail: "john.doe@gmail.com"},
		},
		{
			name: "labelled name",
			text: "Name: alice cooper",
			want: domain.ExtractedFields{domain.FieldFullName: "Alice Cooper"},
		},
		{
			name: "nine digit phone",
			text: "phone 555123456",
			want: domain.ExtractedFields{domain.FieldPhone: "555-123-456"},
		},
		{
			name: "dashed phone",
			text: "my number is 555-987-6543",
			want: domain.ExtractedFields{domain.FieldPhone: "555-987-6543"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(t, tt.text))
		})
	}
}

func TestExtract_EmailAddressIsNotAnAddress(t *testing.T) {
	fields := pattern.ExtractFields("my email address is john@example.com")

	assert.False(t, fields.Has(domain.FieldAddress))
	assert.Equal(t, "john@example.com", fields.Get(domain.FieldEmail))
}

func TestExtract_NothingMatchedIsEmptySuccess(t *testing.T) {
	out, err := pattern.New().Extract(context.Background(), port.ExtractInput{Kind: domain.InputText, Text: "the weather is nice"})

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.NotNil(t, out.Fields)
	assert.Zero(t, out.Fields.Len())
	assert.Equal(t, "regex-patterns", out.ModelUsed)
}

func TestExtract_AudioUnsupported(t *testing.T) {
	e := pattern.New()

	assert.False(t, e.Supports(domain.InputAudio))
	assert.True(t, e.Supports(domain.InputText))
	assert.NoError(t, e.Available(context.Background()))

	_, err := e.Extract(context.Background(), port.ExtractInput{Kind: domain.InputAudio, Audio: []byte{1, 2}})
	assert.ErrorIs(t, err, extractor.ErrUnsupportedInput)
}

func TestExtractFields_ArbitraryInputOnlySchemaKeys(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		".....",
		"my name is",
		"address:",
		"at at at at",
		"i live at .",
		"\x00\xff\xfe",
		"名前は田中です my name is 田中",
		"phone phone phone 123",
		"email is at dot com",
		"addresses 1",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			for k := range pattern.ExtractFields(in) {
				assert.True(t, k.IsValid(), "input %q produced key %q", in, k)
			}
		})
	}
}

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxform/internal/domain"
)

func fullForm() *domain.FormState {
	s := domain.NewFormState("s1")
	s.Merge(domain.ExtractedFields{
		domain.FieldFullName: "John Doe",
		domain.FieldEmail:    "john@example.com",
		domain.FieldPhone:    "(555) 123-4567",
		domain.FieldAddress:  "123 Main St",
	})
	return s
}

func TestFormState_MergeIsAdditive(t *testing.T) {
	s := domain.NewFormState("s1")

	s.Merge(domain.ExtractedFields{domain.FieldFullName: "John Doe"})
	s.Merge(domain.ExtractedFields{domain.FieldEmail: "john@example.com"})

	assert.Equal(t, "John Doe", s.Get(domain.FieldFullName))
	assert.Equal(t, "john@example.com", s.Get(domain.FieldEmail))
}

func TestFormState_MergeOverwritesPresentField(t *testing.T) {
	s := domain.NewFormState("s1")
	s.Merge(domain.ExtractedFields{domain.FieldFullName: "John Doe"})

	changed := s.Merge(domain.ExtractedFields{domain.FieldFullName: "Jane Doe"})

	assert.Equal(t, []domain.FieldName{domain.FieldFullName}, changed)
	assert.Equal(t, "Jane Doe", s.Get(domain.FieldFullName))
}

func TestFormState_MergeNeverClearsOmittedFields(t *testing.T) {
	s := fullForm()

	s.Merge(domain.ExtractedFields{})
	s.Merge(domain.ExtractedFields{domain.FieldEmail: "   "})

	assert.True(t, s.IsComplete())
	assert.Equal(t, "john@example.com", s.Get(domain.FieldEmail))
}

func TestFormState_MergeIsIdempotent(t *testing.T) {
	fields := domain.ExtractedFields{domain.FieldFullName: "John Doe", domain.FieldPhone: "555-123-4567"}
	once := domain.NewFormState("s1")
	once.Merge(fields)
	twice := domain.NewFormState("s1")
	twice.Merge(fields)
	changed := twice.Merge(fields)

	assert.Empty(t, changed)
	assert.Equal(t, once.Values, twice.Values)
}

func TestFormState_MissingFieldsSchemaOrder(t *testing.T) {
	s := domain.NewFormState("s1")
	s.Merge(domain.ExtractedFields{domain.FieldAddress: "123 Main St"})

	assert.Equal(t,
		[]domain.FieldName{domain.FieldFullName, domain.FieldEmail, domain.FieldPhone},
		s.MissingFields(),
	)
	assert.False(t, s.IsComplete())
}

func TestFormState_Reset(t *testing.T) {
	s := fullForm()
	require.True(t, s.IsComplete())

	s.Reset()

	assert.Equal(t, domain.RequiredFields, s.MissingFields())
	assert.False(t, s.IsComplete())
	assert.Equal(t, 0.0, s.CompletionPercentage())
}

func TestFormState_CompletionPercentage(t *testing.T) {
	s := domain.NewFormState("s1")
	s.Merge(domain.ExtractedFields{domain.FieldFullName: "A B"})
	assert.Equal(t, 25.0, s.CompletionPercentage())

	assert.Equal(t, 100.0, fullForm().CompletionPercentage())
}

func TestMissingFieldsMessage(t *testing.T) {
	tests := []struct {
		name    string
		missing []domain.FieldName
		want    string
	}{
		{"none", nil, "Great! All required information has been collected."},
		{"one", []domain.FieldName{domain.FieldPhone}, "I still need your phone number. Please provide it."},
		{"two", []domain.FieldName{domain.FieldPhone, domain.FieldAddress}, "I still need your phone number and address. Please provide them."},
		{"all", domain.RequiredFields, "I still need your full name, email address, phone number, and address. Please provide them."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.MissingFieldsMessage(tt.missing))
		})
	}
}

func TestNewExtractedFields_DropsUnknownAndBlank(t *testing.T) {
	f := domain.NewExtractedFields(map[string]string{
		"Name":     " John ",
		"email":    "",
		"zip_code": "12345",
	})

	assert.Equal(t, domain.ExtractedFields{domain.FieldFullName: "John"}, f)
	assert.Equal(t, []domain.FieldName{domain.FieldFullName}, f.Keys())
}

func TestNewSubmission(t *testing.T) {
	sub := domain.NewSubmission(fullForm(), "demo")

	assert.Equal(t, "s1", sub.SessionID)
	assert.Equal(t, "John Doe", sub.Name)
	assert.Equal(t, "demo", sub.Provider)
	assert.False(t, sub.CreatedAt.IsZero())
}

func TestAudioFormatFromContentType(t *testing.T) {
	f, ok := domain.AudioFormatFromContentType("audio/webm;codecs=opus")
	assert.True(t, ok)
	assert.Equal(t, domain.AudioWebM, f)

	_, ok = domain.AudioFormatFromContentType("text/plain")
	assert.False(t, ok)
}

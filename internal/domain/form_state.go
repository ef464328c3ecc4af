package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	completeMessage = "Great! All required information has been collected."
)

// FormState is the cumulative form for one session.
type FormState struct {
	SessionID string               `json:"session_id"`
	Values    map[FieldName]string `json:"values"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NewFormState returns an empty form for the given session.
func NewFormState(sessionID string) *FormState {
	return &FormState{
		SessionID: sessionID,
		Values:    make(map[FieldName]string, len(RequiredFields)),
	}
}

// Merge applies each present, non-empty field from fields. Omitted fields are untouched.
// It returns the fields whose stored value actually changed.
func (s *FormState) Merge(fields ExtractedFields) []FieldName {
	if s.Values == nil {
		s.Values = make(map[FieldName]string, len(RequiredFields))
	}
	var changed []FieldName
	for _, f := range RequiredFields {
		v, ok := fields[f]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if s.Values[f] != v {
			s.Values[f] = v
			changed = append(changed, f)
		}
	}
	if len(changed) > 0 {
		s.UpdatedAt = time.Now().UTC()
	}
	return changed
}

// Get returns the stored value of f, or "".
func (s *FormState) Get(f FieldName) string {
	if s.Values == nil {
		return ""
	}
	return s.Values[f]
}

// MissingFields returns the unfilled fields in schema order.
func (s *FormState) MissingFields() []FieldName {
	missing := make([]FieldName, 0, len(RequiredFields))
	for _, f := range RequiredFields {
		if s.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (s *FormState) IsComplete() bool {
	return len(s.MissingFields()) == 0
}

// Reset clears every value, equivalent to a fresh session.
func (s *FormState) Reset() {
	s.Values = make(map[FieldName]string, len(RequiredFields))
	s.UpdatedAt = time.Now().UTC()
}

// CompletionPercentage is filled/total*100 rounded to one decimal.
func (s *FormState) CompletionPercentage() float64 {
	filled := len(RequiredFields) - len(s.MissingFields())
	pct := float64(filled) / float64(len(RequiredFields)) * 100
	return math.Round(pct*10) / 10
}

// Fields returns the filled values as ExtractedFields.
func (s *FormState) Fields() ExtractedFields {
	out := make(ExtractedFields, len(s.Values))
	for k, v := range s.Values {
		out.Set(k, v)
	}
	return out
}

func (s *FormState) Clone() *FormState {
	c := &FormState{SessionID: s.SessionID, UpdatedAt: s.UpdatedAt}
	c.Values = make(map[FieldName]string, len(s.Values))
	for k, v := range s.Values {
		c.Values[k] = v
	}
	return c
}

// MissingMessage returns the reminder for the remaining fields, or the completion notice.
func (s *FormState) MissingMessage() string {
	return MissingFieldsMessage(s.MissingFields())
}

// MissingFieldsMessage builds the user-facing reminder for the given missing fields.
func MissingFieldsMessage(missing []FieldName) string {
	if len(missing) == 0 {
		return completeMessage
	}
	labels := make([]string, len(missing))
	for i, f := range missing {
		labels[i] = strings.ToLower(f.Label())
	}
	switch len(labels) {
	case 1:
		return fmt.Sprintf("I still need your %s. Please provide it.", labels[0])
	case 2:
		return fmt.Sprintf("I still need your %s and %s. Please provide them.", labels[0], labels[1])
	default:
		head := strings.Join(labels[:len(labels)-1], ", ")
		return fmt.Sprintf("I still need your %s, and %s. Please provide them.", head, labels[len(labels)-1])
	}
}

// FieldNames converts to plain strings for JSON output.
func FieldNames(fs []FieldName) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

package domain

import "strings"

// FieldName identifies one form field in the schema.
type FieldName string

const (
	FieldFullName FieldName = "name"
	FieldEmail    FieldName = "email"
	FieldPhone    FieldName = "phone"
	FieldAddress  FieldName = "address"
)

// RequiredFields is the ordered form schema. Ordering drives MissingFields and reminders.
var RequiredFields = []FieldName{FieldFullName, FieldEmail, FieldPhone, FieldAddress}

var fieldLabels = map[FieldName]string{
	FieldFullName: "Full Name",
	FieldEmail:    "Email Address",
	FieldPhone:    "Phone Number",
	FieldAddress:  "Address",
}

// Label returns the human-readable label used in prompts to the user.
func (f FieldName) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// IsValid reports whether f belongs to the schema.
func (f FieldName) IsValid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// ParseFieldName resolves a key case-insensitively against the schema.
func ParseFieldName(s string) (FieldName, bool) {
	f := FieldName(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", false
	}
	return f, true
}

// ExtractedFields holds values found in one extraction round. Absent keys mean "not found".
type ExtractedFields map[FieldName]string

// NewExtractedFields builds an ExtractedFields from a plain map, dropping unknown keys and blanks.
func NewExtractedFields(m map[string]string) ExtractedFields {
	out := make(ExtractedFields, len(m))
	for k, v := range m {
		if f, ok := ParseFieldName(k); ok {
			out.Set(f, v)
		}
	}
	return out
}

// Set stores a trimmed value. Blank values are ignored.
func (e ExtractedFields) Set(f FieldName, v string) {
	v = strings.TrimSpace(v)
	if v == "" || !f.IsValid() {
		return
	}
	e[f] = v
}

func (e ExtractedFields) Get(f FieldName) string { return e[f] }

func (e ExtractedFields) Has(f FieldName) bool {
	_, ok := e[f]
	return ok
}

func (e ExtractedFields) Len() int { return len(e) }

// Keys returns the present fields in schema order.
func (e ExtractedFields) Keys() []FieldName {
	keys := make([]FieldName, 0, len(e))
	for _, f := range RequiredFields {
		if e.Has(f) {
			keys = append(keys, f)
		}
	}
	return keys
}

func (e ExtractedFields) Clone() ExtractedFields {
	out := make(ExtractedFields, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Strings returns the fields as a string-keyed map for wire encoding.
func (e ExtractedFields) Strings() map[string]string {
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[string(k)] = v
	}
	return out
}

package extractor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"voxform/internal/domain"
)

const transcriptKey = "transcript"

// ParseFieldsJSON reads a model reply into schema fields. It tries a strict
// parse first, then the first balanced {...} object embedded in the text.
// Unknown keys, nulls and blanks are dropped; a "transcript" key is returned separately.
func ParseFieldsJSON(text string) (domain.ExtractedFields, string, error) {
	text = strings.TrimSpace(text)

	obj, err := decodeObject(text)
	if err != nil {
		candidate, ok := FirstJSONObject(text)
		if !ok {
			return nil, "", fmt.Errorf("%w: no JSON object in %q", ErrMalformedResponse, Truncate(text, 200))
		}
		if obj, err = decodeObject(candidate); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	fields := make(domain.ExtractedFields, len(domain.RequiredFields))
	var transcript string
	for k, raw := range obj {
		s, ok := scalarString(raw)
		if !ok {
			continue
		}
		if strings.EqualFold(k, transcriptKey) {
			transcript = strings.TrimSpace(s)
			continue
		}
		if f, ok := domain.ParseFieldName(k); ok {
			fields.Set(f, s)
		}
	}
	return fields, transcript, nil
}

func decodeObject(text string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("not a JSON object")
	}
	return obj, nil
}

// scalarString renders strings, numbers and booleans. Nulls, arrays and objects are rejected.
func scalarString(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		if strings.EqualFold(strings.TrimSpace(t), "null") {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// FirstJSONObject returns the first balanced {...} substring, honouring string
// literals and escapes so braces inside values do not confuse the scan.
func FirstJSONObject(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end, ok := matchBrace(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

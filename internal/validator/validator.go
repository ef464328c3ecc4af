// Package validator normalizes extracted field values and scores how much
// they can be trusted. Values failing a rule are dropped before they reach
// the session form.
package validator

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"voxform/internal/domain"
)

// Validator normalizes one field. ok=false means the value must be discarded.
type Validator interface {
	Field() domain.FieldName
	Normalize(value string) (normalized string, ok bool)
}

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	nameRe     = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	nonDigitRe = regexp.MustCompile(`\D`)
	spaceRe    = regexp.MustCompile(`\s+`)
	digitRe    = regexp.MustCompile(`\d`)
	letterRe   = regexp.MustCompile(`[a-zA-Z]`)
)

var titleCaser = cases.Title(language.English)

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return titleCaser.String(strings.ToLower(s))
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

type emailValidator struct{}

func (emailValidator) Field() domain.FieldName { return domain.FieldEmail }

func (emailValidator) Normalize(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if !emailRe.MatchString(v) {
		return "", false
	}
	return v, true
}

type phoneValidator struct{}

func (phoneValidator) Field() domain.FieldName { return domain.FieldPhone }

// Normalize keeps 10-15 digits. Ten digits render as (XXX) XXX-XXXX, longer numbers as +digits.
func (phoneValidator) Normalize(v string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(v, "")
	if len(digits) < 10 || len(digits) > 15 {
		return "", false
	}
	if len(digits) == 10 {
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:], true
	}
	return "+" + digits, true
}

type nameValidator struct{}

func (nameValidator) Field() domain.FieldName { return domain.FieldFullName }

func (nameValidator) Normalize(v string) (string, bool) {
	v = collapseSpaces(v)
	if len(v) < 2 || !nameRe.MatchString(v) {
		return "", false
	}
	return TitleCase(v), true
}

type addressValidator struct{}

func (addressValidator) Field() domain.FieldName { return domain.FieldAddress }

func (addressValidator) Normalize(v string) (string, bool) {
	v = collapseSpaces(v)
	if len(v) < 5 || !digitRe.MatchString(v) || !letterRe.MatchString(v) {
		return "", false
	}
	return TitleCase(v), true
}

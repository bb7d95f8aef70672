package parser

import (
	"strings"
	"unicode"
)

// Normalize strips punctuation and symbol noise from a name fragment,
// trims it and case-folds it. Characters outside letters, digits,
// underscore and whitespace are dropped. Lower-casing is a no-op for
// uncased scripts, so Arabic names pass through untouched.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(strings.TrimSpace(b.String()))
}

package suggest

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// A cases.Caser keeps state between calls, so each call builds its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Sanitize trims and lowercases a query or name.
func Sanitize(s string) string {
	return lower(strings.TrimSpace(s))
}

// Tokenize splits a sanitized string on whitespace. It never yields empty tokens.
func Tokenize(s string) []string {
	return strings.Fields(Sanitize(s))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

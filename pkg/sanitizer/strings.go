package sanitizer

import (
	"strings"
	"unicode"
)

// SingleLine replaces line breaks and collapses runs of whitespace into one space.
func SingleLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// StripControl removes non-printable control characters.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

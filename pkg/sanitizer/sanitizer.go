// Package sanitizer normalizes free-text input before it is validated
// and persisted. Booking requests arrive from an untrusted HTTP
// surface; requester names are trimmed, control characters stripped,
// and internal whitespace collapsed.
package sanitizer

import (
	"strings"
	"unicode"
)

const maxNameLength = 100

// SanitizeName normalizes a requester or resource name.
func SanitizeName(s string) string {
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		// Tabs and newlines are both control and space runes; they
		// collapse to a space rather than disappearing.
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
			}
			lastWasSpace = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}

	out := b.String()
	if runes := []rune(out); len(runes) > maxNameLength {
		out = strings.TrimRight(string(runes[:maxNameLength]), " ")
	}
	return out
}

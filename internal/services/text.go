package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxFieldRunes bounds free-text fields to the directory column width.
const maxFieldRunes = 100

// cleanText NFC-normalizes s, drops control characters, collapses runs of
// whitespace and trims the result to maxFieldRunes.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	space := false
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if n >= maxFieldRunes {
			break
		}
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
			n++
			if n >= maxFieldRunes {
				break
			}
		}
		space = false
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}

// optionalText is cleanText that maps an empty result to nil.
func optionalText(s string) *string {
	s = cleanText(s)
	if s == "" {
		return nil
	}
	return &s
}

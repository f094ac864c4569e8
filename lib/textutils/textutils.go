package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery prepares free-form user input for use as search query:
// NFC form, no control characters, whitespace runs collapsed to single space.
func NormalizeQuery(q string) string {
	q = norm.NFC.String(q)
	var b strings.Builder
	b.Grow(len(q))
	sp := false
	for _, r := range q {
		if unicode.IsSpace(r) {
			sp = b.Len() != 0
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if sp {
			b.WriteByte(' ')
			sp = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

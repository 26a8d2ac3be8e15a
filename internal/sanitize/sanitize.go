// Package sanitize normalizes user-provided text before it is sent to the
// conversation backend or fed into a prompt.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxMessageLength is the hard cap on a single user message.
const MaxMessageLength = 600

var (
	unsafeChars = regexp.MustCompile("[<>`$\\\\]")
	whitespace  = regexp.MustCompile(`\s+`)
)

// Clean trims the input, replaces injection-sensitive characters with
// spaces, collapses runs of whitespace, and caps the result at
// MaxMessageLength runes. It never fails; invalid or empty input yields "".
func Clean(text string) string {
	clean := unsafeChars.ReplaceAllString(text, " ")
	clean = whitespace.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)

	runes := []rune(clean)
	if len(runes) > MaxMessageLength {
		return string(runes[:MaxMessageLength])
	}
	return clean
}

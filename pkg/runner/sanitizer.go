package runner

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelSize bounds a label written by the text reporter.
var MaxLabelSize = 256

// Sanitize makes a name from a scenario file safe to print: invalid UTF-8 is
// replaced, control characters (ANSI escapes included) are stripped and the
// result is truncated to MaxLabelSize bytes.
func Sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}

	clean := true
	for _, r := range s {
		if unicode.IsControl(r) {
			clean = false
			break
		}
	}
	if !clean {
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			if !unicode.IsControl(r) {
				b.WriteRune(r)
			}
		}
		s = b.String()
	}

	if len(s) > MaxLabelSize {
		cut := MaxLabelSize
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

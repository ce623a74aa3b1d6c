package logger

import (
	"fmt"
	"strings"
)

// SanitizeForLog escapes control characters so caller-supplied strings
// (workflow IDs, variant names, source URLs) cannot forge log entries or
// emit terminal escape sequences. Unicode is preserved; newlines, tabs,
// null bytes, ANSI escapes, and other control characters are escaped.
func SanitizeForLog(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		case '\x00':
			result.WriteString("\\x00")
		default:
			if r < 32 || r == 127 || r == '\x1b' {
				result.WriteString(fmt.Sprintf("\\x%02x", r))
			} else {
				result.WriteRune(r)
			}
		}
	}
	return result.String()
}

package emitter

import (
	"fmt"
	"strings"
)

// pythonString renders s as a single-quoted Python string literal.
func pythonString(s string) string {
	return "'" + escape(s, '\'', false) + "'"
}

// jsString renders s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	return "'" + escape(s, '\'', true) + "'"
}

// escape backslash-escapes the delimiter, backslashes and control characters.
// Line and paragraph separators are only escaped for JavaScript, where they
// terminate a string literal.
func escape(s string, delim rune, js bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == delim || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case js && (r == '\u2028' || r == '\u2029'):
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

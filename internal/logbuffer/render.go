package logbuffer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TimestampLayout is the timestamp format used by RenderText. Times are UTC.
const TimestampLayout = "2006-01-02 15:04:05.000 UTC"

// RenderText formats the buffer oldest-first, one line per entry:
//
//	[2025-01-02 03:04:05.000 UTC] INFO [cache] saved record
//
// Target and message are escaped so that each entry occupies exactly one
// line. Backslash becomes \\ and newline \n; carriage return and tab use
// their usual escapes, other control characters and the Unicode line
// separators are written as \uXXXX.
func (b *Buffer) RenderText() string {
	return RenderEntries(b.Snapshot())
}

// RenderEntries formats entries the same way RenderText does.
func RenderEntries(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteByte('[')
		sb.WriteString(e.Timestamp.UTC().Format(TimestampLayout))
		sb.WriteString("] ")
		sb.WriteString(e.Level.String())
		sb.WriteString(" [")
		sb.WriteString(EscapeLine(e.Target))
		sb.WriteString("] ")
		sb.WriteString(EscapeLine(e.Message))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// EscapeLine rewrites s so it contains no line breaks or other control
// characters. Invalid UTF-8 bytes are written as \xNN.
func EscapeLine(s string) string {
	if !needsEscape(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&sb, `\x%02x`, s[i])
			i++
			continue
		}
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
		i += size
	}
	return sb.String()
}

func needsEscape(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || r == '\\' || unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
			return true
		}
		i += size
	}
	return false
}

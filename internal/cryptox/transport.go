package cryptox

import (
	"strings"
	"unicode"
)

// LineWidth is the column at which FormatForTransport breaks blobs.
const LineWidth = 64

// FormatForTransport inserts a newline after every LineWidth characters.
// No trailing newline is added and nothing else is changed.
func FormatForTransport(blob string) string {
	if len(blob) <= LineWidth {
		return blob
	}
	var b strings.Builder
	b.Grow(len(blob) + len(blob)/LineWidth)
	for i := 0; i < len(blob); i += LineWidth {
		if i > 0 {
			b.WriteByte('\n')
		}
		end := i + LineWidth
		if end > len(blob) {
			end = len(blob)
		}
		b.WriteString(blob[i:end])
	}
	return b.String()
}

// NormalizeFromTransport removes every whitespace character (spaces, tabs,
// newlines) so pasted or wrapped blobs can be decrypted.
func NormalizeFromTransport(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

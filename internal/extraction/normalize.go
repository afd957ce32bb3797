package extraction

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Text is OCR output prepared for pattern search.
type Text struct {
	// Blob is the whole text, upper-cased.
	Blob string
	// Lines are the non-empty, trimmed lines of Blob in their original order.
	Lines []string
}

// Normalize prepares raw OCR text. Compatibility forms such as full-width
// letters are folded with NFKC before upper-casing so they match ASCII patterns.
func Normalize(raw string) Text {
	blob := strings.ToUpper(norm.NFKC.String(raw))

	var lines []string
	for _, line := range strings.Split(blob, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return Text{Blob: blob, Lines: lines}
}

// lineAfter returns the line offset positions after i, or "" when there is none.
func (t Text) lineAfter(i, offset int) string {
	if j := i + offset; j < len(t.Lines) {
		return t.Lines[j]
	}
	return ""
}

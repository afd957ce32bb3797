package ocr

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tsawler/tabula"
)

// PageText returns the text layer of a single-page PDF, or "" for images and
// for scans that carry no text.
func PageText(page *Page) (string, error) {
	if !page.IsPDF() {
		return "", nil
	}

	text, warnings, err := tabula.Open(page.Path).Pages(1).Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text layer of %s: %w", page.Path, err)
	}
	if len(warnings) > 0 {
		slog.Debug("PDF text layer read with warnings.", "file", page.Path, "warnings", tabula.FormatWarnings(warnings))
	}
	return strings.TrimSpace(text), nil
}

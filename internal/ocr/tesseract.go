package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs Tesseract locally through gosseract. Tesseract and
// its language data must be installed on the host.
type TesseractRecognizer struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

func NewTesseractRecognizer(languages ...string) *TesseractRecognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractRecognizer{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize creates a client per call; gosseract clients are not safe for concurrent use.
func (r *TesseractRecognizer) Recognize(ctx context.Context, path string) (string, error) {
	workDir, err := os.MkdirTemp("", "ocr-tesseract-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	page, err := FirstPage(path, workDir)
	if err != nil {
		return "", err
	}

	// Born-digital PDFs are read from their text layer; only scans go through Tesseract.
	text, err := PageText(page)
	if err != nil {
		slog.Warn("Falling back to OCR.", "file", filepath.Base(path), "error", err)
	}
	if text != "" {
		return text, nil
	}

	raster, err := Rasterize(page, workDir)
	if errors.Is(err, errNoPageImage) {
		slog.Info("PDF page has neither text nor images.", "file", filepath.Base(path), "reason", err)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), "300"); err != nil {
		return "", fmt.Errorf("set dpi: %w", err)
	}
	if err := c.SetImageFromBytes(raster); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err = c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

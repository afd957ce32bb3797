// Package ocr turns an uploaded image or PDF into recognized text.
//
// Every backend reads only the first page of a PDF. A structurally valid file
// with no legible content yields an empty string; ErrUnreadableFile is
// reserved for input that cannot be decoded at all.
package ocr

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnreadableFile is returned when the input cannot be decoded as an image or PDF.
var ErrUnreadableFile = errors.New("unreadable file")

// Recognizer extracts text from the image or PDF at path.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// Config selects and configures a Recognizer backend.
type Config struct {
	Backend   string // "tesseract" (default), "vertex" or "documentai"
	Languages []string

	ProjectID      string
	VertexAIRegion string
	VertexModel    string

	DocumentAILocation    string
	DocumentAIProcessorID string
}

// New builds the Recognizer named by cfg.Backend.
func New(ctx context.Context, cfg Config) (Recognizer, error) {
	switch cfg.Backend {
	case "", "tesseract":
		return NewTesseractRecognizer(cfg.Languages...), nil
	case "vertex":
		return NewVertexRecognizer(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.VertexModel)
	case "documentai":
		return NewDocumentAIRecognizer(ctx, cfg.ProjectID, cfg.DocumentAILocation, cfg.DocumentAIProcessorID)
	}
	return nil, fmt.Errorf("unknown OCR backend %q", cfg.Backend)
}

func unreadable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnreadableFile, fmt.Sprintf(format, args...))
}

// Package extraction turns OCR text of PAN cards, GST certificates and
// certificates of incorporation into structured documents.
//
// Extractors are stateless: each owns its compiled patterns and may be used
// from any number of goroutines. The identifier is the only mandatory field;
// every other field degrades to an empty string when it cannot be found.
package extraction

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Lllllllleong/documentverification/internal/models"
)

// ErrIdentifierNotFound is returned when the text holds no document number of the expected shape.
var ErrIdentifierNotFound = errors.New("identifier not found")

// Extractor reads one kind of document from OCR text.
type Extractor interface {
	Kind() models.Kind
	Extract(text string) (models.Document, error)
}

// ForKind returns a new extractor for the given kind.
func ForKind(kind models.Kind) (Extractor, error) {
	switch kind {
	case models.KindPAN:
		return NewPanExtractor(), nil
	case models.KindGST:
		return NewGstExtractor(), nil
	case models.KindCIN:
		return NewCinExtractor(), nil
	}
	return nil, fmt.Errorf("no extractor for document kind %q", kind)
}

// datePattern matches DD/MM/YYYY-shaped tokens without checking the calendar.
const datePattern = `\d{2}/\d{2}/\d{4}`

func compile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}

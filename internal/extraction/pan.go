package extraction

import (
	"regexp"
	"strings"

	"github.com/Lllllllleong/documentverification/internal/models"
)

// panMarker is the card header; the holder's name and father's name follow it.
const panMarker = "INCOME TAX"

// PanExtractor reads PAN cards.
type PanExtractor struct {
	number *regexp.Regexp
	date   *regexp.Regexp
}

func NewPanExtractor() *PanExtractor {
	return &PanExtractor{
		number: compile(`[A-Z]{5}[0-9]{4}[A-Z]`),
		date:   compile(datePattern),
	}
}

func (e *PanExtractor) Kind() models.Kind { return models.KindPAN }

// Extract returns a *models.PanDocument. The first PAN-shaped token wins;
// there is no checksum, so any token of the right shape is accepted.
func (e *PanExtractor) Extract(raw string) (models.Document, error) {
	text := Normalize(raw)

	number := e.number.FindString(text.Blob)
	if number == "" {
		return nil, ErrIdentifierNotFound
	}

	doc := &models.PanDocument{
		PanNumber: number,
		DOB:       e.date.FindString(text.Blob),
	}
	for i, line := range text.Lines {
		if strings.Contains(line, panMarker) {
			doc.Name = text.lineAfter(i, 1)
			doc.FatherName = text.lineAfter(i, 2)
			break
		}
	}
	return doc, nil
}

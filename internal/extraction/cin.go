package extraction

import (
	"regexp"
	"strings"

	"github.com/Lllllllleong/documentverification/internal/models"
)

// CinExtractor reads certificates of incorporation, e.g. U12345MH2020PTC123456.
type CinExtractor struct {
	number *regexp.Regexp
	date   *regexp.Regexp
}

func NewCinExtractor() *CinExtractor {
	return &CinExtractor{
		number: compile(`[A-Z][0-9]{5}[A-Z]{2}[0-9]{4}[A-Z]{3}[0-9]{6}`),
		date:   compile(datePattern),
	}
}

func (e *CinExtractor) Kind() models.Kind { return models.KindCIN }

// Extract returns a *models.CinDocument. The company name is the first line
// mentioning LIMITED or PRIVATE; the registration date is the first date in the text.
func (e *CinExtractor) Extract(raw string) (models.Document, error) {
	text := Normalize(raw)

	number := e.number.FindString(text.Blob)
	if number == "" {
		return nil, ErrIdentifierNotFound
	}

	doc := &models.CinDocument{
		CinNumber:        number,
		RegistrationDate: e.date.FindString(text.Blob),
	}
	for _, line := range text.Lines {
		if strings.Contains(line, "LIMITED") || strings.Contains(line, "PRIVATE") {
			doc.CompanyName = line
			break
		}
	}
	return doc, nil
}

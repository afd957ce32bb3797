package extraction

import (
	"regexp"
	"strings"

	"github.com/Lllllllleong/documentverification/internal/models"
)

// GstExtractor reads GST registration certificates.
type GstExtractor struct {
	number *regexp.Regexp
}

func NewGstExtractor() *GstExtractor {
	return &GstExtractor{
		number: compile(`\d{2}[A-Z]{5}\d{4}[A-Z]\d[Z][A-Z0-9]`),
	}
}

func (e *GstExtractor) Kind() models.Kind { return models.KindGST }

// Extract returns a *models.GstDocument.
//
// Each label is searched over all lines on its own, so one line may serve as
// the value of two labels, and "TRADE NAME" also matches an
// "ADDITIONAL TRADE NAME" line that comes first.
func (e *GstExtractor) Extract(raw string) (models.Document, error) {
	text := Normalize(raw)

	number := e.number.FindString(text.Blob)
	if number == "" {
		return nil, ErrIdentifierNotFound
	}

	return &models.GstDocument{
		GstNumber:           number,
		RegistrationNumber:  text.valueAfter("REGISTRATION NUMBER"),
		LegalName:           text.valueAfter("LEGAL NAME"),
		TradeName:           text.valueAfter("TRADE NAME"),
		AdditionalTradeName: text.valueAfter("ADDITIONAL TRADE NAME"),
		Constitution:        text.valueAfter("CONSTITUTION"),
		Address:             text.valueAfter("ADDRESS"),
		DateOfLiability:     text.valueAfter("DATE OF LIABILITY"),
		DateOfRegistration:  text.valueAfter("DATE OF REGISTRATION"),
		PeriodOfValidity:    text.valueAfter("VALIDITY"),
		TypeOfRegistration:  text.valueAfter("TYPE OF REGISTRATION"),
		ApprovingAuthority:  text.valueAfter("APPROVING"),
		Designation:         text.valueAfter("DESIGNATION"),
		Jurisdiction:        text.valueAfter("JURISDICTION"),
		DateOfIssue:         text.valueAfter("DATE OF ISSUE"),
	}, nil
}

// valueAfter resolves a labelled value from the first line containing label:
// the text between the first and second colon on that line if non-blank,
// otherwise the whole next line, otherwise "".
func (t Text) valueAfter(label string) string {
	for i, line := range t.Lines {
		if !strings.Contains(line, label) {
			continue
		}
		if parts := strings.Split(line, ":"); len(parts) > 1 {
			if v := strings.TrimSpace(parts[1]); v != "" {
				return v
			}
		}
		return t.lineAfter(i, 1)
	}
	return ""
}

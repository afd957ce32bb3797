package extraction

import (
	"testing"

	"github.com/Lllllllleong/documentverification/internal/models"
	"github.com/stretchr/testify/require"
)

const incorporationCertificateText = `Government of India
Ministry of Corporate Affairs
Certificate of Incorporation
I hereby certify that ACME SOFTWARE PRIVATE LIMITED is incorporated on this
Twelfth day of March Two thousand twenty under the Companies Act, 2013
The Corporate Identity Number of the company is U72200MH2020PTC123456
Given under my hand at Mumbai this 12/03/2020
`

func extractCin(t *testing.T, raw string) *models.CinDocument {
	t.Helper()

	doc, err := NewCinExtractor().Extract(raw)
	require.NoError(t, err)

	cin, ok := doc.(*models.CinDocument)
	require.True(t, ok, "unexpected document type %T", doc)
	return cin
}

func TestCinExtractorCertificate(t *testing.T) {
	doc := extractCin(t, incorporationCertificateText)

	require.Equal(t, &models.CinDocument{
		CinNumber:        "U72200MH2020PTC123456",
		CompanyName:      "I HEREBY CERTIFY THAT ACME SOFTWARE PRIVATE LIMITED IS INCORPORATED ON THIS",
		RegistrationDate: "12/03/2020",
	}, doc)
}

func TestCinExtractorCompanyLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"first matching line", "SOME HEADER\nACME PRIVATE LIMITED\nADDRESS LINE", "ACME PRIVATE LIMITED"},
		{"limited only", "ACME LIMITED\nBETA PRIVATE LIMITED", "ACME LIMITED"},
		{"private only", "header\nacme private co", "ACME PRIVATE CO"},
		{"no match", "SOME HEADER\nADDRESS LINE", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := extractCin(t, tc.raw+"\nL12345DL1999PLC000001")
			require.Equal(t, tc.want, doc.CompanyName)
		})
	}
}

func TestCinExtractorRegistrationDate(t *testing.T) {
	require.Empty(t, extractCin(t, "L12345DL1999PLC000001").RegistrationDate)
	require.Equal(t, "31/12/1999", extractCin(t, "L12345DL1999PLC000001 31/12/1999").RegistrationDate)
}

func TestCinExtractorMissingNumber(t *testing.T) {
	for _, raw := range []string{
		"ACME PRIVATE LIMITED 12/03/2020",
		"U7220MH2020PTC123456",
		"U72200MH2020PT123456",
	} {
		doc, err := NewCinExtractor().Extract(raw)
		require.ErrorIs(t, err, ErrIdentifierNotFound, raw)
		require.Nil(t, doc)
	}
}

func TestCinStoredFields(t *testing.T) {
	doc := extractCin(t, "L12345DL1999PLC000001")

	require.Equal(t, map[string]string{
		"company_name":      models.Unknown,
		"registration_date": "",
	}, doc.StoredFields())
}

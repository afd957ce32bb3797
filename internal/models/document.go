package models

import (
	"fmt"
	"strings"
	"time"
)

// Unknown is stored for fields that could not be read from the scan.
const Unknown = "UNKNOWN"

// Kind identifies one of the supported document classes.
type Kind string

const (
	KindPAN Kind = "pan"
	KindGST Kind = "gst"
	KindCIN Kind = "cin"
)

// Kinds lists every supported kind in route order.
var Kinds = []Kind{KindPAN, KindGST, KindCIN}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported document kind %q", s)
}

// Label is the upper-case name used in user-facing messages, e.g. "PAN not detected".
func (k Kind) Label() string { return strings.ToUpper(string(k)) }

// IdentifierKey is the response key carrying the document number.
func (k Kind) IdentifierKey() string { return string(k) }

// Document is the result of a successful extraction.
type Document interface {
	Kind() Kind
	Identifier() string
	// StoredFields returns the fields persisted on first registration.
	StoredFields() map[string]string
	// Data returns every extracted field, keyed as in API responses.
	Data() map[string]string
}

// Record is the persisted form of a registered document.
// The Firestore document ID is the identifier.
type Record struct {
	Kind       Kind              `firestore:"kind"`
	Identifier string            `firestore:"identifier"`
	Fields     map[string]string `firestore:"fields"`
	CreatedAt  time.Time         `firestore:"createdAt"`
}

// Data returns the stored fields plus the identifier under the kind's key.
func (r *Record) Data() map[string]string {
	data := make(map[string]string, len(r.Fields)+1)
	for k, v := range r.Fields {
		data[k] = v
	}
	data[r.Kind.IdentifierKey()] = r.Identifier
	return data
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// PanDocument holds the fields read from a PAN card.
type PanDocument struct {
	PanNumber  string
	Name       string
	FatherName string
	DOB        string
}

func (d *PanDocument) Kind() Kind         { return KindPAN }
func (d *PanDocument) Identifier() string { return d.PanNumber }

func (d *PanDocument) StoredFields() map[string]string {
	return map[string]string{
		"name":        orUnknown(d.Name),
		"father_name": orUnknown(d.FatherName),
		"dob":         orUnknown(d.DOB),
	}
}

func (d *PanDocument) Data() map[string]string {
	return map[string]string{
		"pan":         d.PanNumber,
		"name":        d.Name,
		"father_name": d.FatherName,
		"dob":         d.DOB,
	}
}

// GstDocument holds the fields read from a GST registration certificate.
// Only LegalName and TradeName are persisted alongside the GSTIN.
type GstDocument struct {
	GstNumber           string
	RegistrationNumber  string
	LegalName           string
	TradeName           string
	AdditionalTradeName string
	Constitution        string
	Address             string
	DateOfLiability     string
	DateOfRegistration  string
	PeriodOfValidity    string
	TypeOfRegistration  string
	ApprovingAuthority  string
	Designation         string
	Jurisdiction        string
	DateOfIssue         string
}

func (d *GstDocument) Kind() Kind         { return KindGST }
func (d *GstDocument) Identifier() string { return d.GstNumber }

func (d *GstDocument) StoredFields() map[string]string {
	return map[string]string{
		"legal_name": orUnknown(d.LegalName),
		"trade_name": orUnknown(d.TradeName),
	}
}

func (d *GstDocument) Data() map[string]string {
	return map[string]string{
		"gst":                   d.GstNumber,
		"registration_number":   d.RegistrationNumber,
		"legal_name":            d.LegalName,
		"trade_name":            d.TradeName,
		"additional_trade_name": d.AdditionalTradeName,
		"constitution":          d.Constitution,
		"address":               d.Address,
		"date_of_liability":     d.DateOfLiability,
		"date_of_registration":  d.DateOfRegistration,
		"period_of_validity":    d.PeriodOfValidity,
		"type_of_registration":  d.TypeOfRegistration,
		"approving_authority":   d.ApprovingAuthority,
		"designation":           d.Designation,
		"jurisdiction":          d.Jurisdiction,
		"date_of_issue":         d.DateOfIssue,
	}
}

// CinDocument holds the fields read from a certificate of incorporation.
type CinDocument struct {
	CinNumber        string
	CompanyName      string
	RegistrationDate string
}

func (d *CinDocument) Kind() Kind         { return KindCIN }
func (d *CinDocument) Identifier() string { return d.CinNumber }

// StoredFields keeps an empty registration date as-is; only the company name falls back to Unknown.
func (d *CinDocument) StoredFields() map[string]string {
	return map[string]string{
		"company_name":      orUnknown(d.CompanyName),
		"registration_date": d.RegistrationDate,
	}
}

func (d *CinDocument) Data() map[string]string {
	return map[string]string{
		"cin":               d.CinNumber,
		"company_name":      d.CompanyName,
		"registration_date": d.RegistrationDate,
	}
}

package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TokenLength is the length of a signature process token issued by REST PKI.
const TokenLength = 43

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

// IsWellFormedToken reports whether token looks like a REST PKI process token.
// It says nothing about whether the service still knows the token.
func IsWellFormedToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// DocumentID returns the two-digit identifier for n.
func DocumentID(n int) string {
	return fmt.Sprintf("%02d", n)
}

// ParseDocumentID normalises "7" and "07" to "07" and checks it lies in [first, last].
func ParseDocumentID(raw string, first, last int) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("document id is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || len(raw) > 2 {
		return "", fmt.Errorf("document id %q is not a two-digit number", raw)
	}
	if n < first || n > last {
		return "", fmt.Errorf("document id %s is outside %s..%s", DocumentID(n), DocumentID(first), DocumentID(last))
	}
	return DocumentID(n), nil
}

// DocumentIDs lists the identifiers first..last in order.
func DocumentIDs(first, last int) []string {
	if first > last {
		return []string{}
	}
	ids := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		ids = append(ids, DocumentID(i))
	}
	return ids
}

// PadesStartRequest is everything the signing service needs to open a signature process.
type PadesStartRequest struct {
	PdfToSign            []byte
	SignaturePolicyID    string
	SecurityContextID    string
	VisualRepresentation *VisualRepresentation
}

// StartResult is returned by the start operation
type StartResult struct {
	Token      string `json:"token"`
	DocumentID string `json:"document_id"`
}

// SignatureResult is what the signing service returns when a signature is finalized.
type SignatureResult struct {
	SignedPdf   []byte
	Certificate *CertificateInfo
}

// CompleteResult is returned by the complete operation
type CompleteResult struct {
	Filename   string           `json:"filename"`
	DocumentID string           `json:"document_id,omitempty"`
	Signer     *CertificateInfo `json:"signer,omitempty"`
}

// Name is a distinguished name as reported by REST PKI.
type Name struct {
	Country          string `json:"country,omitempty"`
	Organization     string `json:"organization,omitempty"`
	OrganizationUnit string `json:"organizationUnit,omitempty"`
	StateName        string `json:"stateName,omitempty"`
	Locality         string `json:"locality,omitempty"`
	CommonName       string `json:"commonName,omitempty"`
	SerialNumber     string `json:"serialNumber,omitempty"`
	EmailAddress     string `json:"emailAddress,omitempty"`
}

// PkiBrazilInfo holds the ICP-Brasil specific certificate fields.
type PkiBrazilInfo struct {
	CPF             string `json:"cpf,omitempty"`
	CNPJ            string `json:"cnpj,omitempty"`
	Responsavel     string `json:"responsavel,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	CertificateType string `json:"certificateType,omitempty"`
}

// CertificateInfo describes the signer certificate used to finalize a signature.
type CertificateInfo struct {
	SubjectName   Name           `json:"subjectName"`
	IssuerName    Name           `json:"issuerName"`
	EmailAddress  string         `json:"emailAddress,omitempty"`
	SerialNumber  string         `json:"serialNumber,omitempty"`
	ValidityStart string         `json:"validityStart,omitempty"`
	ValidityEnd   string         `json:"validityEnd,omitempty"`
	PkiBrazil     *PkiBrazilInfo `json:"pkiBrazil,omitempty"`
}

// NationalID returns the CPF when the certificate is ICP-Brasil.
func (c *CertificateInfo) NationalID() string {
	if c == nil || c.PkiBrazil == nil {
		return ""
	}
	return c.PkiBrazil.CPF
}

// SignatureRecord is the audit row stored for each completed signature.
type SignatureRecord struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"document_id"`
	Filename    string    `json:"filename"`
	SignerName  string    `json:"signer_name"`
	SignerEmail string    `json:"signer_email"`
	NationalID  string    `json:"national_id"`
	CreatedAt   time.Time `json:"created_at"`
}

package models

import "strings"

// DocumentType is the closed set of documents the extraction pipeline recognizes.
type DocumentType string

const (
	DocEPICCard DocumentType = "epic_card"
	DocForm6    DocumentType = "form_6"
	DocForm6A   DocumentType = "form_6a"
	DocForm7    DocumentType = "form_7"
	DocForm8    DocumentType = "form_8"
	DocAadhaar  DocumentType = "aadhaar"
	DocUnknown  DocumentType = "unknown"
)

var expectedFields = map[DocumentType][]string{
	DocEPICCard: {"epic_number", "name", "relative_name", "gender", "dob", "address"},
	DocForm6:    {"name", "dob", "gender", "address", "phone", "email", "aadhaar_number"},
	DocForm6A:   {"name", "passport_number", "dob", "gender", "overseas_address", "email"},
	DocForm7:    {"applicant_name", "epic_number", "name_to_delete", "reason"},
	DocForm8:    {"name", "epic_number", "correction_type", "address", "phone"},
	DocAadhaar:  {"aadhaar_number", "name", "dob", "gender", "address"},
}

// ParseDocumentType maps s onto the enum; anything unrecognized becomes DocUnknown.
func ParseDocumentType(s string) DocumentType {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := expectedFields[t]; ok {
		return t
	}
	return DocUnknown
}

// ExpectedFields returns a copy of the ordered field list for t. DocUnknown has none.
func ExpectedFields(t DocumentType) []string {
	fields := expectedFields[t]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// DisplayName returns a human-readable English label for t.
func (t DocumentType) DisplayName() string {
	switch t {
	case DocEPICCard:
		return "Voter ID (EPIC) card"
	case DocForm6:
		return "Form 6"
	case DocForm6A:
		return "Form 6A"
	case DocForm7:
		return "Form 7"
	case DocForm8:
		return "Form 8"
	case DocAadhaar:
		return "Aadhaar card"
	default:
		return "unrecognized document"
	}
}

// ExtractedField is one field read from a document image.
type ExtractedField struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ValidationError records a field value that failed its format rule.
type ValidationError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// VisionExtractionResult is the output of the two-pass extraction pipeline.
type VisionExtractionResult struct {
	DocumentType     DocumentType      `json:"document_type"`
	Fields           []ExtractedField  `json:"fields"`
	Confidence       float64           `json:"confidence"`
	MissingFields    []string          `json:"missing_fields"`
	ValidationErrors []ValidationError `json:"validation_errors"`
	Explanation      string            `json:"explanation"`
	LatencyMs        int64             `json:"latency_ms"`
	Model            string            `json:"model,omitempty"`
}

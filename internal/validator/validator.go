// Package validator checks extracted document field values against format rules.
// All functions are pure; fields without a registered rule always pass.
package validator

import (
	"regexp"
	"strings"

	"github.com/hyperjump/votesathi/internal/models"
)

var (
	epicPattern     = regexp.MustCompile(`^[A-Z]{3}[0-9]{7}$`)
	aadhaarPattern  = regexp.MustCompile(`^[0-9]{12}$`)
	dobPattern      = regexp.MustCompile(`^([0-9]{2}/[0-9]{2}/[0-9]{4}|[0-9]{2}-[0-9]{2}-[0-9]{4}|[0-9]{4}/[0-9]{2}/[0-9]{2}|[0-9]{4}-[0-9]{2}-[0-9]{2})$`)
	phonePattern    = regexp.MustCompile(`^(\+91|91|0)?[6-9][0-9]{9}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	pincodePattern  = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	passportPattern = regexp.MustCompile(`^[A-Z][0-9]{7}$`)
)

var genderTokens = map[string]struct{}{
	"male": {}, "female": {}, "other": {}, "transgender": {}, "third gender": {},
	"m": {}, "f": {}, "t": {},
	"पुरुष": {}, "महिला": {}, "स्त्री": {}, "अन्य": {}, "ट्रांसजेंडर": {},
}

// rule returns "" for a valid value, otherwise a message.
type rule func(value string) string

var rules = map[string]rule{
	"epic_number": func(v string) string {
		if !epicPattern.MatchString(strings.TrimSpace(v)) {
			return "EPIC number must be 3 uppercase letters followed by 7 digits"
		}
		return ""
	},
	"aadhaar_number": func(v string) string {
		if !aadhaarPattern.MatchString(strings.ReplaceAll(strings.TrimSpace(v), " ", "")) {
			return "Aadhaar number must be exactly 12 digits"
		}
		return ""
	},
	"dob": func(v string) string {
		if !dobPattern.MatchString(strings.TrimSpace(v)) {
			return "date of birth must be DD/MM/YYYY or YYYY/MM/DD"
		}
		return ""
	},
	"gender": func(v string) string {
		if _, ok := genderTokens[strings.ToLower(strings.TrimSpace(v))]; !ok {
			return "unrecognized gender value"
		}
		return ""
	},
	"phone": func(v string) string {
		cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(v))
		if !phonePattern.MatchString(cleaned) {
			return "phone must be a valid 10-digit Indian mobile number"
		}
		return ""
	},
	"email": func(v string) string {
		if !emailPattern.MatchString(strings.TrimSpace(v)) {
			return "invalid email address"
		}
		return ""
	},
	"pincode": func(v string) string {
		if !pincodePattern.MatchString(strings.TrimSpace(v)) {
			return "PIN code must be 6 digits and not start with 0"
		}
		return ""
	},
	"passport_number": func(v string) string {
		if !passportPattern.MatchString(strings.TrimSpace(v)) {
			return "passport number must be 1 uppercase letter followed by 7 digits"
		}
		return ""
	},
}

// Validate checks value against the rule registered for field.
// Returns "" when the value is valid or no rule exists.
func Validate(field, value string) string {
	r, ok := rules[field]
	if !ok {
		return ""
	}
	return r(value)
}

// ValidateFields validates each field in order and returns the failures.
func ValidateFields(fields []models.ExtractedField) []models.ValidationError {
	errs := make([]models.ValidationError, 0)
	for _, f := range fields {
		if msg := Validate(f.Name, f.Value); msg != "" {
			errs = append(errs, models.ValidationError{Field: f.Name, Error: msg})
		}
	}
	return errs
}

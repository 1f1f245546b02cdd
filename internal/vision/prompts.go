package vision

import (
	"fmt"
	"strings"

	"github.com/hyperjump/votesathi/internal/models"
)

const extractSystemPrompt = `You read Indian election documents from images. Reply with JSON only, no prose and no code fences.`

func extractPrompt() string {
	var sb strings.Builder
	sb.WriteString("Identify the document and extract its fields.\n\n")
	sb.WriteString("Return exactly this JSON shape:\n")
	sb.WriteString(`{"document_type": "<type>", "fields": [{"name": "<field>", "value": "<text>", "confidence": <0..1>}], "missing_fields": ["<field>"], "overall_confidence": <0..1>, "notes": "<short note>"}`)
	sb.WriteString("\n\nAllowed document_type values and their fields:\n")
	for _, t := range []models.DocumentType{
		models.DocEPICCard, models.DocForm6, models.DocForm6A,
		models.DocForm7, models.DocForm8, models.DocAadhaar,
	} {
		fmt.Fprintf(&sb, "- %s: %s\n", t, strings.Join(models.ExpectedFields(t), ", "))
	}
	sb.WriteString("- unknown: anything else\n\n")
	sb.WriteString("Use the field names above in snake_case. Copy values exactly as printed. ")
	sb.WriteString("Omit fields you cannot read rather than guessing. Dates as DD/MM/YYYY.")
	return sb.String()
}

func explainPrompt(res *models.VisionExtractionResult, locale string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A citizen uploaded a %s. These fields were read from it:\n", res.DocumentType.DisplayName())
	for _, f := range res.Fields {
		fmt.Fprintf(&sb, "- %s: %s (confidence %.2f)\n", f.Name, redactValue(f.Name, f.Value), f.Confidence)
	}
	if len(res.MissingFields) > 0 {
		fmt.Fprintf(&sb, "Missing fields: %s\n", strings.Join(res.MissingFields, ", "))
	}
	for _, e := range res.ValidationErrors {
		fmt.Fprintf(&sb, "Problem with %s: %s\n", e.Field, e.Error)
	}
	fmt.Fprintf(&sb, "\nIn 2 to 3 short sentences written in %s, tell the citizen what document this is, "+
		"what was read, and what they should fix or add. Never repeat full Aadhaar, EPIC, or phone numbers.",
		models.LanguageName(locale))
	return sb.String()
}

// redactValue masks identity numbers down to their last four characters.
func redactValue(field, value string) string {
	switch field {
	case "aadhaar_number", "epic_number", "phone", "passport_number":
		v := strings.ReplaceAll(value, " ", "")
		r := []rune(v)
		if len(r) <= 4 {
			return strings.Repeat("X", len(r))
		}
		return strings.Repeat("X", len(r)-4) + string(r[len(r)-4:])
	default:
		return value
	}
}

package vision

import (
	"fmt"

	"github.com/hyperjump/votesathi/internal/models"
)

// parseFailureMessage is the explanation attached to the terminal fallback result.
func parseFailureMessage(locale string) string {
	if locale == "hi" {
		return "क्षमा करें, हम इस दस्तावेज़ को पढ़ नहीं सके। कृपया साफ़ और पूरी रोशनी वाली फ़ोटो दोबारा अपलोड करें।"
	}
	return "Sorry, we could not read this document. Please upload a clear, well-lit photo and try again."
}

// templateExplanation is used when the explanation pass fails.
func templateExplanation(res *models.VisionExtractionResult, locale string) string {
	n := len(res.Fields)
	if locale == "hi" {
		msg := fmt.Sprintf("यह दस्तावेज़ %s प्रतीत होता है। हमने इससे %d फ़ील्ड पढ़े हैं।", hindiDocName(res.DocumentType), n)
		if len(res.MissingFields) > 0 || len(res.ValidationErrors) > 0 {
			msg += " कृपया अधूरी या गलत जानकारी की जाँच करें।"
		}
		return msg
	}
	msg := fmt.Sprintf("This looks like a %s. We read %d field(s) from it.", res.DocumentType.DisplayName(), n)
	if len(res.MissingFields) > 0 || len(res.ValidationErrors) > 0 {
		msg += " Please check the missing or invalid details."
	}
	return msg
}

func hindiDocName(t models.DocumentType) string {
	switch t {
	case models.DocEPICCard:
		return "मतदाता पहचान पत्र (EPIC)"
	case models.DocForm6:
		return "फ़ॉर्म 6"
	case models.DocForm6A:
		return "फ़ॉर्म 6A"
	case models.DocForm7:
		return "फ़ॉर्म 7"
	case models.DocForm8:
		return "फ़ॉर्म 8"
	case models.DocAadhaar:
		return "आधार कार्ड"
	default:
		return "अज्ञात दस्तावेज़"
	}
}

package vision

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/generation"
	"github.com/hyperjump/votesathi/internal/models"
)

const epicReply = "```json\n" + `{
  "document_type": "epic_card",
  "fields": [
    {"name": "epic_number", "value": "ABC1234567", "confidence": 0.95},
    {"name": "Name", "value": "Asha Devi", "confidence": 0.9},
    {"name": "relative name", "value": "Ram Prasad", "confidence": 0.85},
    {"name": "gender", "value": "Female", "confidence": 0.99},
    {"name": "dob", "value": "01/01/1990", "confidence": 0.8},
    {"name": "address", "value": "12 Main Road", "confidence": 1.7}
  ],
  "missing_fields": ["everything"],
  "overall_confidence": 0.9,
  "notes": ""
}` + "\n```"

func newPipeline(gen generation.Generator, opts ...Option) *Pipeline {
	return NewPipeline(gen, config.VisionConfig{Model: "vision-test"}, nil, opts...)
}

func TestExtractDocumentFields_Success(t *testing.T) {
	gen := generation.NewMockGenerator(
		generation.MockReply{Text: epicReply, Model: "claude-vision"},
		generation.MockReply{Text: "  This is your voter ID card. All details look correct.  "},
	)
	res, err := newPipeline(gen).ExtractDocumentFields(context.Background(), "aW1n", "image/jpeg", "en")
	if err != nil {
		t.Fatalf("ExtractDocumentFields: %v", err)
	}
	if res.DocumentType != models.DocEPICCard {
		t.Errorf("DocumentType = %q", res.DocumentType)
	}
	if len(res.Fields) != 6 {
		t.Fatalf("Fields = %+v", res.Fields)
	}
	if res.Fields[1].Name != "name" || res.Fields[2].Name != "relative_name" {
		t.Errorf("field names not normalized: %+v", res.Fields)
	}
	if res.Fields[5].Confidence != 1 {
		t.Errorf("field confidence not clamped: %v", res.Fields[5].Confidence)
	}
	if len(res.MissingFields) != 0 {
		t.Errorf("model-reported missing fields must be ignored, got %v", res.MissingFields)
	}
	if len(res.ValidationErrors) != 0 {
		t.Errorf("unexpected validation errors: %+v", res.ValidationErrors)
	}
	if res.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", res.Confidence)
	}
	if res.Explanation != "This is your voter ID card. All details look correct." {
		t.Errorf("Explanation = %q", res.Explanation)
	}
	if res.Model != "claude-vision" {
		t.Errorf("Model = %q", res.Model)
	}
	if res.LatencyMs < 0 {
		t.Errorf("LatencyMs = %d", res.LatencyMs)
	}

	reqs := gen.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(reqs))
	}
	first := reqs[0].Messages[0].Parts
	if first[0].ImageBase64 != "aW1n" || first[0].MimeType != "image/jpeg" {
		t.Errorf("extraction pass should send the image first: %+v", first)
	}
	if reqs[0].Model != "vision-test" {
		t.Errorf("extraction model = %q", reqs[0].Model)
	}
	if !strings.Contains(reqs[1].Messages[0].Parts[0].Text, "English") {
		t.Error("explanation prompt should name the response language")
	}
}

func TestExtractDocumentFields_MissingAndInvalid(t *testing.T) {
	reply := `{"document_type": "form_6", "fields": [
		{"name": "name", "value": "Ravi", "confidence": 0.9},
		{"name": "dob", "value": "1990", "confidence": 0.7},
		{"name": "gender", "value": "female", "confidence": 0.9},
		{"name": "email", "value": "", "confidence": 0.2}
	], "overall_confidence": 0.8}`
	gen := generation.NewMockGenerator(generation.MockReply{Text: reply}, generation.MockReply{Text: "Fix your date of birth."})
	res, err := newPipeline(gen).ExtractDocumentFields(context.Background(), "x", "image/png", "en")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"address", "phone", "email", "aadhaar_number"}
	if strings.Join(res.MissingFields, ",") != strings.Join(want, ",") {
		t.Errorf("MissingFields = %v, want %v", res.MissingFields, want)
	}
	if len(res.ValidationErrors) != 1 || res.ValidationErrors[0].Field != "dob" {
		t.Errorf("ValidationErrors = %+v", res.ValidationErrors)
	}
	// 0.8 * (1 - 0.05*4) * (1 - 0.1*1) = 0.576
	if res.Confidence != 0.58 {
		t.Errorf("Confidence = %v, want 0.58", res.Confidence)
	}
}

func TestExtractDocumentFields_UnknownTypeCoerced(t *testing.T) {
	reply := `{"document_type": "passport", "fields": [{"name": "name", "value": "X", "confidence": 0.5}], "overall_confidence": 0.5}`
	gen := generation.NewMockGenerator(generation.MockReply{Text: reply}, generation.MockReply{Text: "ok"})
	res, err := newPipeline(gen).ExtractDocumentFields(context.Background(), "x", "image/png", "en")
	if err != nil {
		t.Fatal(err)
	}
	if res.DocumentType != models.DocUnknown || len(res.MissingFields) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Confidence != 0.5 {
		t.Errorf("Confidence = %v", res.Confidence)
	}
}

func TestExtractDocumentFields_ParseFailure(t *testing.T) {
	gen := generation.NewMockGenerator(generation.MockReply{Text: "Sorry, the image is too blurry to read."})
	for _, locale := range []string{"en", "hi"} {
		res, err := newPipeline(gen).ExtractDocumentFields(context.Background(), "x", "image/png", locale)
		if err != nil {
			t.Fatalf("parse failure must not be an error: %v", err)
		}
		if res.DocumentType != models.DocUnknown || res.Confidence != 0 || len(res.Fields) != 0 {
			t.Errorf("unexpected fallback: %+v", res)
		}
		if len(res.ValidationErrors) != 1 || res.ValidationErrors[0].Field != "parse" ||
			res.ValidationErrors[0].Error != "Failed to parse extraction result" {
			t.Errorf("unexpected validation errors: %+v", res.ValidationErrors)
		}
		if res.Explanation != parseFailureMessage(locale) {
			t.Errorf("Explanation = %q", res.Explanation)
		}
	}
	if len(gen.Requests()) != 2 {
		t.Errorf("parse failure should skip the explanation pass, got %d calls", len(gen.Requests()))
	}
}

func TestExtractDocumentFields_ExtractionError(t *testing.T) {
	gen := generation.NewMockGenerator(generation.MockReply{Err: errors.New("connection refused")})
	_, err := newPipeline(gen).ExtractDocumentFields(context.Background(), "x", "image/png", "en")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractDocumentFields_ExplainErrorUsesTemplate(t *testing.T) {
	gen := generation.NewMockGenerator(
		generation.MockReply{Text: epicReply},
		generation.MockReply{Err: errors.New("rate limited")},
	)
	res, err := newPipeline(gen).ExtractDocumentFields(context.Background(), "x", "image/png", "en")
	if err != nil {
		t.Fatal(err)
	}
	if res.Explanation != "This looks like a Voter ID (EPIC) card. We read 6 field(s) from it." {
		t.Errorf("Explanation = %q", res.Explanation)
	}
	if res.Confidence != 0.9 {
		t.Error("explanation failure must not change extraction results")
	}
}

func TestExtractDocumentFields_ExplainTimeoutUsesTemplate(t *testing.T) {
	gen := generation.NewMockGenerator(
		generation.MockReply{Text: epicReply},
		generation.MockReply{Block: true},
	)
	p := newPipeline(gen, WithTimeouts(time.Second, 20*time.Millisecond))
	res, err := p.ExtractDocumentFields(context.Background(), "x", "image/png", "hi")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Explanation, "6 फ़ील्ड") {
		t.Errorf("expected hindi template, got %q", res.Explanation)
	}
}

func TestExplainPromptRedactsIdentityNumbers(t *testing.T) {
	reply := `{"document_type": "aadhaar", "fields": [
		{"name": "aadhaar_number", "value": "1234 5678 9012", "confidence": 0.9},
		{"name": "name", "value": "Meena", "confidence": 0.9}
	], "overall_confidence": 0.9}`
	gen := generation.NewMockGenerator(generation.MockReply{Text: reply}, generation.MockReply{Text: "ok"})
	if _, err := newPipeline(gen).ExtractDocumentFields(context.Background(), "x", "image/png", "en"); err != nil {
		t.Fatal(err)
	}
	prompt := gen.Requests()[1].Messages[0].Parts[0].Text
	if strings.Contains(prompt, "123456789012") || strings.Contains(prompt, "1234 5678 9012") {
		t.Error("explanation prompt leaked the full aadhaar number")
	}
	if !strings.Contains(prompt, "XXXXXXXX9012") {
		t.Errorf("expected masked aadhaar in prompt:\n%s", prompt)
	}
}

func TestParseExtraction_OverallConfidenceDefaultsToFieldMean(t *testing.T) {
	res, ok := ParseExtraction(`{"document_type": "unknown", "fields": [
		{"name": "a", "value": "x", "confidence": 0.6},
		{"name": "b", "value": 42, "confidence": 0.8},
		{"name": "c", "value": null, "confidence": 0.1}
	]}`)
	if !ok {
		t.Fatal("expected parse success")
	}
	if len(res.Fields) != 2 || res.Fields[1].Value != "42" {
		t.Errorf("Fields = %+v", res.Fields)
	}
	if res.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", res.Confidence)
	}
}

func TestParseExtraction_Invalid(t *testing.T) {
	for _, in := range []string{"", "no json here", `{"fields": "not-a-list"}`, "{broken"} {
		if _, ok := ParseExtraction(in); ok {
			t.Errorf("ParseExtraction(%q) should fail", in)
		}
	}
}

func TestDecayConfidence(t *testing.T) {
	for _, raw := range []float64{-1, 0, 0.37, 0.9, 1, 5} {
		prev := 2.0
		for m := 0; m <= 25; m++ {
			v := DecayConfidence(raw, m, 0)
			if v < 0 || v > 1 {
				t.Fatalf("DecayConfidence(%v, %d, 0) = %v out of range", raw, m, v)
			}
			if v > prev {
				t.Fatalf("not monotone in missing count at raw=%v m=%d", raw, m)
			}
			prev = v
		}
		prev = 2.0
		for e := 0; e <= 12; e++ {
			v := DecayConfidence(raw, 2, e)
			if v < 0 || v > 1 {
				t.Fatalf("DecayConfidence(%v, 2, %d) = %v out of range", raw, e, v)
			}
			if v > prev {
				t.Fatalf("not monotone in error count at raw=%v e=%d", raw, e)
			}
			prev = v
		}
	}
	if DecayConfidence(1, 30, 0) != 0 {
		t.Error("many missing fields should floor at 0")
	}
}

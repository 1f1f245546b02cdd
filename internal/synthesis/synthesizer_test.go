package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/safety"
)

type stubChecker struct {
	res *safety.Result
	err error
}

func (c stubChecker) Check(_ context.Context, candidate, _ string) (*safety.Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.res != nil {
		return c.res, nil
	}
	return &safety.Result{SafeText: candidate}, nil
}

func boolPtr(b bool) *bool { return &b }

func genResult(text string, conf float64, escalate *bool) *models.GenerationResult {
	return &models.GenerationResult{
		Text:           text,
		Confidence:     conf,
		Escalate:       escalate,
		Sources:        []models.Source{{ID: "kb-forms", Title: "Forms"}},
		RetrievalTrace: []models.TraceEntry{{PassageID: "kb-forms#0", Score: 1.2}},
	}
}

func visionResult(conf float64) *models.VisionExtractionResult {
	return &models.VisionExtractionResult{
		DocumentType: models.DocEPICCard,
		Confidence:   conf,
		Explanation:  "This looks like a Voter ID (EPIC) card.",
	}
}

func TestSynthesize_ImageOnlyVisionPassthrough(t *testing.T) {
	s := NewSynthesizer(stubChecker{}, config.SynthesisConfig{}, nil)
	vis := visionResult(0.82)
	resp, err := s.Synthesize(context.Background(), Input{Locale: "en", Modality: models.ModalityImage, Vision: vis})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != vis.Explanation || resp.Confidence != vis.Confidence {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.RetrievalTrace) != 0 || resp.RetrievalTrace == nil {
		t.Errorf("RetrievalTrace = %#v, want empty non-nil", resp.RetrievalTrace)
	}
	if resp.RouterType != models.RouteVision || resp.Escalate {
		t.Errorf("RouterType = %s, Escalate = %v", resp.RouterType, resp.Escalate)
	}
	if resp.ID == "" || resp.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt should be set")
	}
}

func TestSynthesize_VisionWithSupplement(t *testing.T) {
	s := NewSynthesizer(nil, config.SynthesisConfig{}, nil)
	tests := []struct {
		name       string
		genConf    float64
		wantAppend bool
	}{
		{"high confidence appended", 0.75, true},
		{"threshold is exclusive", 0.6, false},
		{"low confidence ignored", 0.4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.Synthesize(context.Background(), Input{
				Locale:     "en",
				Modality:   models.ModalityImageText,
				Vision:     visionResult(0.7),
				Generation: genResult("Use Form 8 to correct your card.", tt.genConf, nil),
			})
			if err != nil {
				t.Fatal(err)
			}
			appended := strings.Contains(resp.Text, Separator+"Use Form 8")
			if appended != tt.wantAppend {
				t.Errorf("appended = %v, text = %q", appended, resp.Text)
			}
			if resp.Confidence != 0.7 {
				t.Errorf("Confidence = %v, vision confidence must not be blended", resp.Confidence)
			}
			if tt.wantAppend && (len(resp.Sources) != 1 || len(resp.RetrievalTrace) != 1) {
				t.Errorf("sources/trace not carried: %+v", resp)
			}
			if !tt.wantAppend && len(resp.Sources) != 0 {
				t.Errorf("sources carried without append: %+v", resp.Sources)
			}
		})
	}
}

func TestSynthesize_GenerationVerbatim(t *testing.T) {
	s := NewSynthesizer(nil, config.SynthesisConfig{}, nil)
	gen := genResult("Use Form 6.", 0.8, nil)
	// Vision is ignored for text modality.
	resp, err := s.Synthesize(context.Background(), Input{
		Locale: "en", Modality: models.ModalityText, RouterType: models.RouteBooth,
		Generation: gen, Vision: visionResult(0.9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != gen.Text || resp.Confidence != 0.8 || resp.RouterType != models.RouteBooth {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Sources) != 1 || resp.RetrievalTrace[0].PassageID != "kb-forms#0" {
		t.Errorf("citations = %+v / %+v", resp.Sources, resp.RetrievalTrace)
	}
}

func TestSynthesize_Fallback(t *testing.T) {
	s := NewSynthesizer(nil, config.SynthesisConfig{}, nil)
	for _, locale := range []string{"en", "hi-IN"} {
		resp, err := s.Synthesize(context.Background(), Input{Locale: locale, Modality: models.ModalityText})
		if err != nil {
			t.Fatal(err)
		}
		norm := models.NormalizeLocale(locale)
		if resp.Text != Apology(norm) || resp.Confidence != 0.3 || resp.RouterType != models.RouteFallback {
			t.Errorf("%s: resp = %+v", locale, resp)
		}
		if !resp.Escalate {
			t.Errorf("%s: fallback should escalate", locale)
		}
	}
}

func TestSynthesize_Escalation(t *testing.T) {
	tests := []struct {
		name       string
		gen        *models.GenerationResult
		checker    safety.Checker
		want       bool
		wantReason string
	}{
		{"confident answer", genResult("ok", 0.8, nil), nil, false, ""},
		{"below threshold", genResult("ok", 0.54, nil), nil, true, ReasonLowConfidence},
		{"at threshold", genResult("ok", 0.55, nil), nil, false, ""},
		{"explicit false overrides low confidence", genResult("ok", 0.2, boolPtr(false)), nil, false, ""},
		{"explicit true overrides high confidence", genResult("ok", 0.95, boolPtr(true)), nil, true, ReasonExplicit},
		{"safety flag forces escalation", genResult("ok", 0.95, boolPtr(false)),
			stubChecker{res: &safety.Result{Flagged: true, SafeText: "neutral", Categories: []string{"partisan"}}}, true, ReasonSafety},
		{"checker error forces escalation", genResult("ok", 0.95, nil), stubChecker{err: errors.New("down")}, true, ReasonSafety},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.checker, config.SynthesisConfig{}, nil)
			resp, d, err := s.SynthesizeWithDecision(context.Background(), Input{Locale: "en", Modality: models.ModalityText, Generation: tt.gen})
			if err != nil {
				t.Fatal(err)
			}
			if resp.Escalate != tt.want || d.Escalate != tt.want || d.Reason != tt.wantReason {
				t.Errorf("Escalate = %v (decision %+v), want %v/%q", resp.Escalate, d, tt.want, tt.wantReason)
			}
		})
	}
}

func TestSynthesize_SafetyText(t *testing.T) {
	flagged := NewSynthesizer(stubChecker{res: &safety.Result{Flagged: true, SafeText: "neutral"}}, config.SynthesisConfig{}, nil)
	resp, err := flagged.Synthesize(context.Background(), Input{Locale: "en", Modality: models.ModalityText, Generation: genResult("vote for X", 0.9, nil)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "neutral" {
		t.Errorf("Text = %q, want safe replacement", resp.Text)
	}

	failing := NewSynthesizer(stubChecker{err: errors.New("down")}, config.SynthesisConfig{}, nil)
	resp, err = failing.Synthesize(context.Background(), Input{Locale: "en", Modality: models.ModalityText, Generation: genResult("original", 0.9, nil)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "original" {
		t.Errorf("Text = %q, checker error must keep the text", resp.Text)
	}

	rules := NewSynthesizer(safety.NewRuleChecker(), config.SynthesisConfig{}, nil)
	resp, err = rules.Synthesize(context.Background(), Input{Locale: "en", Modality: models.ModalityText, Generation: genResult("You should vote for the best party.", 0.99, boolPtr(false))})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Escalate || strings.Contains(resp.Text, "vote for") {
		t.Errorf("partisan answer not neutralised: %+v", resp)
	}
}

func TestShouldCache(t *testing.T) {
	s := NewSynthesizer(nil, config.SynthesisConfig{}, nil)
	tests := []struct {
		resp *models.ChatResponse
		want bool
	}{
		{&models.ChatResponse{Confidence: 0.6}, true},
		{&models.ChatResponse{Confidence: 0.59}, false},
		{&models.ChatResponse{Confidence: 0.9, Escalate: true}, false},
		{nil, false},
	}
	for i, tt := range tests {
		if got := s.ShouldCache(tt.resp); got != tt.want {
			t.Errorf("case %d: ShouldCache = %v, want %v", i, got, tt.want)
		}
	}
}

func TestSynthesize_CancelledContext(t *testing.T) {
	s := NewSynthesizer(nil, config.SynthesisConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Synthesize(ctx, Input{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

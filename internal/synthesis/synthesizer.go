// Package synthesis composes the final answer from generation and vision
// candidates and decides escalation and caching.
package synthesis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/safety"
	"github.com/hyperjump/votesathi/pkg/utils"
)

// Separator joins the vision explanation and a supplementary generated answer.
const Separator = "\n\n---\n\n"

// Escalation reasons reported to observers.
const (
	ReasonExplicit      = "explicit"
	ReasonLowConfidence = "low_confidence"
	ReasonSafety        = "safety"
)

// Input holds the candidates for one request. Either candidate may be nil.
type Input struct {
	Query      string
	Locale     string
	Modality   models.Modality
	RouterType models.RouterType // route of Generation; defaults to rag
	Generation *models.GenerationResult
	Vision     *models.VisionExtractionResult
}

// Decision explains how a response was escalated.
type Decision struct {
	Escalate bool
	Reason   string
	Safety   *safety.Result
}

// Synthesizer composes responses.
type Synthesizer struct {
	checker safety.Checker
	cfg     config.SynthesisConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewSynthesizer creates a synthesizer. Zero thresholds take their defaults.
// A nil checker disables the safety screen.
func NewSynthesizer(checker safety.Checker, cfg config.SynthesisConfig, logger *zap.Logger) *Synthesizer {
	if cfg.EscalationThreshold == 0 {
		cfg.EscalationThreshold = 0.55
	}
	if cfg.CacheMinConfidence == 0 {
		cfg.CacheMinConfidence = 0.6
	}
	if cfg.SupplementMinConfidence == 0 {
		cfg.SupplementMinConfidence = 0.6
	}
	if cfg.FallbackConfidence == 0 {
		cfg.FallbackConfidence = 0.3
	}
	return &Synthesizer{
		checker: checker,
		cfg:     cfg,
		logger:  utils.OrNop(logger),
		now:     time.Now,
	}
}

// Synthesize builds the response for in. It fails only when ctx is already done.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (*models.ChatResponse, error) {
	resp, _, err := s.SynthesizeWithDecision(ctx, in)
	return resp, err
}

// SynthesizeWithDecision is Synthesize plus the escalation decision.
func (s *Synthesizer) SynthesizeWithDecision(ctx context.Context, in Input) (*models.ChatResponse, *Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	locale := models.NormalizeLocale(in.Locale)
	resp := &models.ChatResponse{
		ID:             uuid.NewString(),
		Sources:        []models.Source{},
		RetrievalTrace: []models.TraceEntry{},
		Modality:       in.Modality,
		Locale:         locale,
		CreatedAt:      s.now().UTC(),
	}
	gen, vis := in.Generation, in.Vision

	switch {
	case vis != nil && (in.Modality == models.ModalityImage || in.Modality == models.ModalityImageText):
		resp.Text = vis.Explanation
		resp.Confidence = vis.Confidence
		resp.RouterType = models.RouteVision
		if gen != nil && gen.Confidence > s.cfg.SupplementMinConfidence && gen.Text != "" {
			resp.Text += Separator + gen.Text
			resp.Sources = append(resp.Sources, gen.Sources...)
			resp.RetrievalTrace = append(resp.RetrievalTrace, gen.RetrievalTrace...)
		}
	case gen != nil:
		resp.Text = gen.Text
		resp.Confidence = gen.Confidence
		resp.Sources = append(resp.Sources, gen.Sources...)
		resp.RetrievalTrace = append(resp.RetrievalTrace, gen.RetrievalTrace...)
		resp.RouterType = in.RouterType
		if resp.RouterType == "" {
			resp.RouterType = models.RouteRAG
		}
	default:
		resp.Text = Apology(locale)
		resp.Confidence = s.cfg.FallbackConfidence
		resp.RouterType = models.RouteFallback
	}
	resp.Confidence = utils.Round2(utils.Clamp01(resp.Confidence))

	decision := &Decision{}
	if gen != nil && gen.Escalate != nil {
		decision.Escalate = *gen.Escalate
		if decision.Escalate {
			decision.Reason = ReasonExplicit
		}
	} else if resp.Confidence < s.cfg.EscalationThreshold {
		decision.Escalate = true
		decision.Reason = ReasonLowConfidence
	}

	if s.checker != nil {
		res, err := s.checker.Check(ctx, resp.Text, in.Query)
		switch {
		case err != nil:
			s.logger.Warn("safety check failed, escalating", zap.Error(err))
			decision.Escalate = true
			decision.Reason = ReasonSafety
		case res != nil && res.Flagged:
			s.logger.Info("response flagged by safety check", zap.Strings("categories", res.Categories))
			if res.SafeText != "" {
				resp.Text = res.SafeText
			}
			decision.Escalate = true
			decision.Reason = ReasonSafety
			decision.Safety = res
		}
	}
	resp.Escalate = decision.Escalate
	return resp, decision, nil
}

// ShouldCache reports whether resp may be written to the response cache.
func (s *Synthesizer) ShouldCache(resp *models.ChatResponse) bool {
	return resp != nil && !resp.Escalate && resp.Confidence >= s.cfg.CacheMinConfidence
}

// Apology is the static answer used when no pipeline produced one.
func Apology(locale string) string {
	if locale == "hi" {
		return "क्षमा करें, मैं अभी इस प्रश्न का उत्तर नहीं दे सका। कृपया वोटर हेल्पलाइन 1950 पर संपर्क करें।"
	}
	return "Sorry, I could not answer that right now. Please contact the Voter Helpline at 1950."
}

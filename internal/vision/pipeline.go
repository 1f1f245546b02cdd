// Package vision extracts structured fields from election document images in
// two passes: a strict-JSON extraction pass and a plain-language explanation pass.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/generation"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/validator"
	"github.com/hyperjump/votesathi/pkg/utils"
)

// ErrExtractionFailed wraps transport failures of the extraction pass. There is
// no fallback for them; parse failures produce a fallback result instead.
var ErrExtractionFailed = errors.New("document extraction failed")

// Confidence decay per missing expected field and per validation error.
const (
	MissingFieldPenalty    = 0.05
	ValidationErrorPenalty = 0.1
)

// ParseErrorField is the ValidationError.Field used when the model reply cannot be parsed.
const ParseErrorField = "parse"

// Pipeline runs document field extraction against a Generator.
type Pipeline struct {
	gen            generation.Generator
	model          string
	extractTokens  int
	explainTokens  int
	extractTimeout time.Duration
	explainTimeout time.Duration
	logger         *zap.Logger
}

// NewPipeline creates a pipeline. Zero limits and timeouts fall back to defaults;
// an empty model uses the generator's default.
func NewPipeline(gen generation.Generator, cfg config.VisionConfig, logger *zap.Logger, opts ...Option) *Pipeline {
	if cfg.ExtractMaxTokens <= 0 {
		cfg.ExtractMaxTokens = 1500
	}
	if cfg.ExplainMaxTokens <= 0 {
		cfg.ExplainMaxTokens = 300
	}
	if cfg.ExtractTimeoutSeconds <= 0 {
		cfg.ExtractTimeoutSeconds = 45
	}
	if cfg.ExplainTimeoutSeconds <= 0 {
		cfg.ExplainTimeoutSeconds = 15
	}
	p := &Pipeline{
		gen:            gen,
		model:          cfg.Model,
		extractTokens:  cfg.ExtractMaxTokens,
		explainTokens:  cfg.ExplainMaxTokens,
		extractTimeout: time.Duration(cfg.ExtractTimeoutSeconds) * time.Second,
		explainTimeout: time.Duration(cfg.ExplainTimeoutSeconds) * time.Second,
		logger:         utils.OrNop(logger),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeouts overrides the per-pass timeouts.
func WithTimeouts(extract, explain time.Duration) Option {
	return func(p *Pipeline) {
		if extract > 0 {
			p.extractTimeout = extract
		}
		if explain > 0 {
			p.explainTimeout = explain
		}
	}
}

type rawExtraction struct {
	DocumentType      string     `json:"document_type"`
	Fields            []rawField `json:"fields"`
	MissingFields     []string   `json:"missing_fields"`
	OverallConfidence *float64   `json:"overall_confidence"`
	Notes             string     `json:"notes"`
}

type rawField struct {
	Name       string          `json:"name"`
	Value      json.RawMessage `json:"value"`
	Confidence float64         `json:"confidence"`
}

// ExtractDocumentFields reads the document in imageBase64 and explains the result in locale.
// A reply that cannot be parsed yields a fallback result with a nil error.
func (p *Pipeline) ExtractDocumentFields(ctx context.Context, imageBase64, mimeType, locale string) (*models.VisionExtractionResult, error) {
	start := time.Now()
	locale = models.NormalizeLocale(locale)

	reply, err := p.runExtraction(ctx, imageBase64, mimeType)
	if err != nil {
		p.logger.Warn("extraction pass failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	res, ok := ParseExtraction(reply.Text)
	if !ok {
		p.logger.Warn("extraction reply not parseable",
			zap.String("reply", utils.Truncate(reply.Text, 200)))
		res = FallbackResult(locale)
		res.Model = reply.Model
		res.LatencyMs = time.Since(start).Milliseconds()
		return res, nil
	}
	res.Model = reply.Model
	res.Explanation = p.explain(ctx, res, locale)
	res.LatencyMs = time.Since(start).Milliseconds()

	p.logger.Info("document extracted",
		zap.String("document_type", string(res.DocumentType)),
		zap.Int("fields", len(res.Fields)),
		zap.Int("missing", len(res.MissingFields)),
		zap.Int("invalid", len(res.ValidationErrors)),
		zap.Float64("confidence", res.Confidence),
		zap.Int64("latency_ms", res.LatencyMs))
	return res, nil
}

func (p *Pipeline) runExtraction(ctx context.Context, imageBase64, mimeType string) (*generation.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.extractTimeout)
	defer cancel()
	return p.gen.Generate(ctx, &generation.Request{
		Model:       p.model,
		System:      extractSystemPrompt,
		Messages:    []generation.Message{generation.UserImage(imageBase64, mimeType, extractPrompt())},
		MaxTokens:   p.extractTokens,
		Temperature: 0.1,
	})
}

// explain runs the second pass. Any failure degrades to a template sentence.
func (p *Pipeline) explain(ctx context.Context, res *models.VisionExtractionResult, locale string) string {
	ctx, cancel := context.WithTimeout(ctx, p.explainTimeout)
	defer cancel()
	reply, err := p.gen.Generate(ctx, &generation.Request{
		Model:       p.model,
		Messages:    []generation.Message{generation.UserText(explainPrompt(res, locale))},
		MaxTokens:   p.explainTokens,
		Temperature: 0.3,
	})
	if err != nil || reply == nil || strings.TrimSpace(reply.Text) == "" {
		p.logger.Warn("explanation pass failed, using template", zap.Error(err))
		return templateExplanation(res, locale)
	}
	return strings.TrimSpace(reply.Text)
}

// ParseExtraction turns the extraction reply into a scored result without an
// explanation. Returns false when the reply holds no parseable JSON object.
func ParseExtraction(text string) (*models.VisionExtractionResult, bool) {
	body := utils.ExtractJSON(text)
	if body == "" {
		return nil, false
	}
	var raw rawExtraction
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, false
	}

	res := &models.VisionExtractionResult{
		DocumentType: models.ParseDocumentType(raw.DocumentType),
		Fields:       make([]models.ExtractedField, 0, len(raw.Fields)),
	}
	seen := make(map[string]bool)
	var confSum float64
	for _, f := range raw.Fields {
		name := normalizeFieldName(f.Name)
		value := fieldValue(f.Value)
		if name == "" || value == "" || seen[name] {
			continue
		}
		seen[name] = true
		conf := utils.Clamp01(f.Confidence)
		confSum += conf
		res.Fields = append(res.Fields, models.ExtractedField{Name: name, Value: value, Confidence: conf})
	}

	res.MissingFields = make([]string, 0)
	for _, want := range models.ExpectedFields(res.DocumentType) {
		if !seen[want] {
			res.MissingFields = append(res.MissingFields, want)
		}
	}
	res.ValidationErrors = validator.ValidateFields(res.Fields)

	overall := 0.0
	if raw.OverallConfidence != nil {
		overall = *raw.OverallConfidence
	} else if len(res.Fields) > 0 {
		overall = confSum / float64(len(res.Fields))
	}
	res.Confidence = DecayConfidence(overall, len(res.MissingFields), len(res.ValidationErrors))
	return res, true
}

// DecayConfidence applies the missing-field and validation-error penalties to
// raw and rounds to two decimals. The result is in [0, 1] and non-increasing
// in both counts.
func DecayConfidence(raw float64, missing, invalid int) float64 {
	missingFactor := 1 - MissingFieldPenalty*float64(missing)
	if missingFactor < 0 {
		missingFactor = 0
	}
	invalidFactor := 1 - ValidationErrorPenalty*float64(invalid)
	if invalidFactor < 0 {
		invalidFactor = 0
	}
	return utils.Round2(utils.Clamp01(raw) * missingFactor * invalidFactor)
}

// FallbackResult is the terminal result for an unparseable extraction reply.
func FallbackResult(locale string) *models.VisionExtractionResult {
	return &models.VisionExtractionResult{
		DocumentType:  models.DocUnknown,
		Fields:        []models.ExtractedField{},
		Confidence:    0,
		MissingFields: []string{},
		ValidationErrors: []models.ValidationError{
			{Field: ParseErrorField, Error: "Failed to parse extraction result"},
		},
		Explanation: parseFailureMessage(models.NormalizeLocale(locale)),
	}
}

func normalizeFieldName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	return n
}

// fieldValue accepts strings, numbers, and booleans; null and nested values read as empty.
func fieldValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v.(type) {
	case float64, bool:
		return strings.TrimSpace(string(raw))
	default:
		return ""
	}
}

// Package assistant orchestrates a citizen request from input validation
// through retrieval, vision, and synthesis to the cached, audited response.
package assistant

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/cache"
	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/metrics"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/speech"
	"github.com/hyperjump/votesathi/internal/storage"
	"github.com/hyperjump/votesathi/internal/synthesis"
	"github.com/hyperjump/votesathi/pkg/utils"
)

var (
	// ErrInvalidInput is returned, wrapped with detail, for requests rejected before any pipeline stage.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPipelineFailed is returned when the primary pipeline failed and no fallback source exists.
	ErrPipelineFailed = errors.New("pipeline failed")
	// ErrUnavailable is returned when a request needs a component that is not configured.
	ErrUnavailable = errors.New("component not configured")
)

// Answerer produces grounded answers to text questions.
type Answerer interface {
	Answer(ctx context.Context, query, locale string, history []models.Turn) (*models.GenerationResult, error)
}

// BoothSearcher finds polling booths for a free-text query.
type BoothSearcher interface {
	Search(ctx context.Context, query string, k int) ([]models.BoothRecord, error)
}

// DocumentReader extracts and explains election documents.
type DocumentReader interface {
	ExtractDocumentFields(ctx context.Context, imageBase64, mimeType, locale string) (*models.VisionExtractionResult, error)
}

// Deps are the collaborators of a Service. Answerer and Synthesizer are
// required; every other field may be nil to disable its feature.
type Deps struct {
	Answerer    Answerer
	Booths      BoothSearcher
	Vision      DocumentReader
	Transcriber speech.Transcriber
	Synthesizer *synthesis.Synthesizer
	Cache       cache.ResponseCache
	Store       storage.Storage
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// Service handles assistant requests.
type Service struct {
	answerer    Answerer
	booths      BoothSearcher
	vision      DocumentReader
	transcriber speech.Transcriber
	synth       *synthesis.Synthesizer
	cache       cache.ResponseCache
	store       storage.Storage
	metrics     *metrics.Metrics
	logger      *zap.Logger

	memoryTurns     int
	boothConfidence float64
	boothLimit      int
	audit           bool
	now             func() time.Time
}

// New creates a Service.
func New(deps Deps, cfg config.AssistantConfig, boothLimit int) *Service {
	memoryTurns := cfg.MemoryTurns
	if memoryTurns <= 0 {
		memoryTurns = 6
	}
	boothConfidence := cfg.BoothConfidence
	if boothConfidence <= 0 {
		boothConfidence = 0.9
	}
	return &Service{
		answerer:        deps.Answerer,
		booths:          deps.Booths,
		vision:          deps.Vision,
		transcriber:     deps.Transcriber,
		synth:           deps.Synthesizer,
		cache:           deps.Cache,
		store:           deps.Store,
		metrics:         deps.Metrics,
		logger:          utils.OrNop(deps.Logger),
		memoryTurns:     memoryTurns,
		boothConfidence: boothConfidence,
		boothLimit:      boothLimit,
		audit:           cfg.AuditEnabled == nil || *cfg.AuditEnabled,
		now:             time.Now,
	}
}

// finish records metrics, session memory, and the audit entry for a response.
func (s *Service) finish(ctx context.Context, sessionID, query string, resp *models.ChatResponse, decision *synthesis.Decision, start time.Time) {
	s.metrics.ObserveRequest(string(resp.Modality), string(resp.RouterType))
	if resp.Escalate {
		reason := synthesis.ReasonLowConfidence
		if decision != nil && decision.Reason != "" {
			reason = decision.Reason
		}
		s.metrics.ObserveEscalation(reason)
	}
	consent := s.consentGranted(ctx, sessionID)
	if consent {
		s.remember(ctx, sessionID, query, resp.Text)
	}
	s.appendAudit(ctx, sessionID, query, resp, consent, start)
}

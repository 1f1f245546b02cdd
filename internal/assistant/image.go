package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/synthesis"
)

// imageAuditQuery stands in for the query of an image sent without a question.
const imageAuditQuery = "[image]"

// Image reads a document image and, when a question accompanies it,
// answers the question alongside. Image responses are never cached.
func (s *Service) Image(ctx context.Context, req models.ImageRequest) (*models.ChatResponse, error) {
	start := time.Now()
	if strings.TrimSpace(req.ImageBase64) == "" {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	req.Message = strings.TrimSpace(req.Message)
	if len([]rune(req.Message)) > models.MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, models.MaxMessageLength)
	}
	if s.vision == nil {
		return nil, fmt.Errorf("%w: vision", ErrUnavailable)
	}
	locale := models.NormalizeLocale(req.Locale)
	modality := req.Modality()

	var (
		wg     sync.WaitGroup
		vis    *models.VisionExtractionResult
		visErr error
		gen    *models.GenerationResult
		genErr error
	)
	if modality == models.ModalityImageText {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gen, _, genErr = s.retrieve(ctx, req.Message, locale, req.SessionID)
		}()
	}
	visStart := time.Now()
	vis, visErr = s.vision.ExtractDocumentFields(ctx, req.ImageBase64, req.MimeType, locale)
	s.metrics.ObserveStage("vision", visStart)
	wg.Wait()

	if visErr != nil {
		s.metrics.ObserveFailure("vision")
		s.logger.Error("document extraction failed", zap.Error(visErr))
	}
	if genErr != nil {
		s.logger.Warn("question alongside image failed", zap.Error(genErr))
	}
	switch {
	case visErr != nil && gen == nil:
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailed, visErr)
	case visErr != nil:
		vis = nil
	}

	resp, decision, err := s.synth.SynthesizeWithDecision(ctx, synthesis.Input{
		Query:      req.Message,
		Locale:     locale,
		Modality:   modality,
		Generation: gen,
		Vision:     vis,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}

	query := req.Message
	if query == "" {
		query = imageAuditQuery
	}
	s.finish(ctx, req.SessionID, query, resp, decision, start)
	return resp, nil
}

// ExtractDocument runs only the extraction pipeline and returns its raw result.
func (s *Service) ExtractDocument(ctx context.Context, imageBase64, mimeType, locale string) (*models.VisionExtractionResult, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	if s.vision == nil {
		return nil, fmt.Errorf("%w: vision", ErrUnavailable)
	}
	start := time.Now()
	res, err := s.vision.ExtractDocumentFields(ctx, imageBase64, mimeType, locale)
	s.metrics.ObserveStage("vision", start)
	if err != nil {
		s.metrics.ObserveFailure("vision")
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}
	return res, nil
}

// SearchBooths runs a direct booth search. A zero limit uses the service default.
func (s *Service) SearchBooths(ctx context.Context, q models.BoothQuery) ([]models.BoothRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if s.booths == nil {
		return nil, fmt.Errorf("%w: booths", ErrUnavailable)
	}
	limit := q.Limit
	if limit == 0 {
		limit = s.boothLimit
	}
	start := time.Now()
	records, err := s.booths.Search(ctx, q.Query, limit)
	s.metrics.ObserveStage("booth", start)
	if err != nil {
		s.metrics.ObserveFailure("booth")
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}
	return records, nil
}

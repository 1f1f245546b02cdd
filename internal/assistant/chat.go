package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/cache"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/speech"
	"github.com/hyperjump/votesathi/internal/synthesis"
)

// Chat answers a text question.
func (s *Service) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.answerText(ctx, textQuery{
		message:   req.Message,
		locale:    req.Locale,
		sessionID: req.SessionID,
		route:     req.Route,
		modality:  models.ModalityText,
	})
}

// Audio transcribes a voice question and answers it like text. The
// transcript is returned on the response.
func (s *Service) Audio(ctx context.Context, req models.AudioRequest) (*models.ChatResponse, error) {
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("%w: audio is empty", ErrInvalidInput)
	}
	if s.transcriber == nil {
		return nil, fmt.Errorf("%w: speech", ErrUnavailable)
	}

	start := time.Now()
	tr, err := s.transcriber.Transcribe(ctx, req.Audio, req.Filename)
	s.metrics.ObserveStage("speech", start)
	if errors.Is(err, speech.ErrEmptyTranscript) {
		return nil, fmt.Errorf("%w: no speech recognised", ErrInvalidInput)
	}
	if err != nil {
		s.metrics.ObserveFailure("speech")
		s.logger.Error("transcription failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}

	chat := models.ChatRequest{Message: tr.Text, Locale: req.Locale, SessionID: req.SessionID}
	if req.Locale == "" && tr.Language != "" {
		chat.Locale = tr.Language
	}
	if err := chat.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	resp, err := s.answerText(ctx, textQuery{
		message:   chat.Message,
		locale:    chat.Locale,
		sessionID: chat.SessionID,
		modality:  models.ModalityAudio,
		started:   start,
	})
	if err != nil {
		return nil, err
	}
	resp.Transcript = tr.Text
	return resp, nil
}

type textQuery struct {
	message   string
	locale    string
	sessionID string
	route     models.RouterType
	modality  models.Modality
	started   time.Time
}

func (s *Service) answerText(ctx context.Context, q textQuery) (*models.ChatResponse, error) {
	start := q.started
	if start.IsZero() {
		start = time.Now()
	}

	key := cache.Fingerprint(q.locale, q.message)
	if s.cache != nil {
		cached, ok := s.cache.Get(ctx, key)
		s.metrics.ObserveCache(ok)
		if ok {
			resp := s.refreshCached(cached, q.modality)
			s.finish(ctx, q.sessionID, q.message, resp, nil, start)
			return resp, nil
		}
	}

	route := q.route
	if route == "" {
		route = ClassifyRoute(q.message)
	}
	gen, routerType, personalized, err := s.generate(ctx, q, route)
	if err != nil {
		return nil, err
	}

	resp, decision, err := s.synth.SynthesizeWithDecision(ctx, synthesis.Input{
		Query:      q.message,
		Locale:     q.locale,
		Modality:   q.modality,
		RouterType: routerType,
		Generation: gen,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}

	// Cache keys are not per session; answers shaped by history stay out.
	if s.cache != nil && !personalized && s.synth.ShouldCache(resp) && ctx.Err() == nil {
		s.cache.Set(ctx, key, resp)
	}
	s.finish(ctx, q.sessionID, q.message, resp, decision, start)
	return resp, nil
}

// refreshCached returns a copy of a cached response with a new identity.
func (s *Service) refreshCached(cached *models.ChatResponse, modality models.Modality) *models.ChatResponse {
	resp := *cached
	resp.ID = newID()
	resp.CreatedAt = s.now().UTC()
	resp.Cached = true
	resp.Modality = modality
	return &resp
}

// generate runs the booth engine or retrieval for a text query. Booth
// queries with no hits fall through to retrieval. personalized reports
// whether session history went into the prompt.
func (s *Service) generate(ctx context.Context, q textQuery, route models.RouterType) (gen *models.GenerationResult, routerType models.RouterType, personalized bool, err error) {
	if route == models.RouteBooth && s.booths != nil {
		start := time.Now()
		records, err := s.booths.Search(ctx, q.message, s.boothLimit)
		s.metrics.ObserveStage("booth", start)
		switch {
		case err != nil:
			s.metrics.ObserveFailure("booth")
			s.logger.Warn("booth search failed, using retrieval", zap.Error(err))
		case len(records) > 0:
			return boothAnswer(records, q.locale, s.boothConfidence), models.RouteBooth, false, nil
		default:
			s.logger.Debug("no booth matched, using retrieval", zap.String("locale", q.locale))
		}
	}

	gen, personalized, err = s.retrieve(ctx, q.message, q.locale, q.sessionID)
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}
	return gen, models.RouteRAG, personalized, nil
}

// retrieve runs the retrieval answerer with the session's recent turns and
// reports whether any were sent.
func (s *Service) retrieve(ctx context.Context, message, locale, sessionID string) (*models.GenerationResult, bool, error) {
	history := s.history(ctx, sessionID)
	start := time.Now()
	gen, err := s.answerer.Answer(ctx, message, locale, history)
	s.metrics.ObserveStage("rag", start)
	if err != nil {
		s.metrics.ObserveFailure("rag")
		s.logger.Error("answer generation failed", zap.Error(err))
		return nil, false, err
	}
	return gen, len(history) > 0, nil
}

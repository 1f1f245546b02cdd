package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/safety"
	"github.com/hyperjump/votesathi/internal/storage"
	"github.com/hyperjump/votesathi/pkg/utils"
)

const (
	consentPrefix = "consent:"
	memoryPrefix  = "memory:"

	auditQueryLimit = 500
)

// Consent is a session's memory consent state.
type Consent struct {
	Granted   bool      `json:"granted"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newID() string { return uuid.New().String() }

// SetConsent records whether a session allows its conversation to be
// remembered. Withdrawing consent also forgets the stored turns.
func (s *Service) SetConsent(ctx context.Context, sessionID string, granted bool) (*Consent, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: storage", ErrUnavailable)
	}
	c := &Consent{Granted: granted, UpdatedAt: s.now().UTC()}
	if err := storage.SetJSON(ctx, s.store, consentPrefix+sessionID, c); err != nil {
		return nil, fmt.Errorf("failed to save consent: %w", err)
	}
	if !granted {
		if err := s.store.Delete(ctx, memoryPrefix+sessionID); err != nil {
			s.logger.Warn("failed to forget session memory", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return c, nil
}

// Consent returns the consent state of a session. Sessions that never
// answered have not granted consent.
func (s *Service) Consent(ctx context.Context, sessionID string) (*Consent, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: storage", ErrUnavailable)
	}
	var c Consent
	err := storage.GetJSON(ctx, s.store, consentPrefix+sessionID, &c)
	if errors.Is(err, storage.ErrNotFound) {
		return &Consent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load consent: %w", err)
	}
	return &c, nil
}

// Audit lists the most recent audit entries of a session.
func (s *Service) Audit(ctx context.Context, sessionID string, limit int) ([]*models.AuditRecord, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: storage", ErrUnavailable)
	}
	return s.store.ListAudit(ctx, sessionID, limit)
}

func (s *Service) consentGranted(ctx context.Context, sessionID string) bool {
	if sessionID == "" || s.store == nil {
		return false
	}
	c, err := s.Consent(ctx, sessionID)
	if err != nil {
		s.logger.Warn("consent lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		return false
	}
	return c.Granted
}

// history returns the remembered turns of a consenting session.
func (s *Service) history(ctx context.Context, sessionID string) []models.Turn {
	if !s.consentGranted(ctx, sessionID) {
		return nil
	}
	var turns []models.Turn
	err := storage.GetJSON(ctx, s.store, memoryPrefix+sessionID, &turns)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("failed to load session memory", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	return turns
}

// remember appends one exchange and keeps the last memoryTurns turns.
func (s *Service) remember(ctx context.Context, sessionID, query, answer string) {
	turns := s.history(ctx, sessionID)
	turns = append(turns,
		models.Turn{Role: "user", Text: query},
		models.Turn{Role: "assistant", Text: answer},
	)
	if len(turns) > s.memoryTurns {
		turns = turns[len(turns)-s.memoryTurns:]
	}
	if err := storage.SetJSON(ctx, s.store, memoryPrefix+sessionID, turns); err != nil {
		s.logger.Warn("failed to save session memory", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// appendAudit writes the audit entry for a response. Identity numbers in
// the query are masked before they are stored.
func (s *Service) appendAudit(ctx context.Context, sessionID, query string, resp *models.ChatResponse, consent bool, start time.Time) {
	if !s.audit || s.store == nil {
		return
	}
	masked, _ := safety.RedactIdentifiers(query)
	rec := &models.AuditRecord{
		ID:         newID(),
		SessionID:  sessionID,
		Query:      utils.Truncate(masked, auditQueryLimit),
		Modality:   resp.Modality,
		RouterType: resp.RouterType,
		Confidence: resp.Confidence,
		Escalate:   resp.Escalate,
		Cached:     resp.Cached,
		Consent:    consent,
		LatencyMs:  s.now().Sub(start).Milliseconds(),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.AppendAudit(ctx, rec); err != nil {
		s.logger.Warn("failed to append audit record", zap.String("session_id", sessionID), zap.Error(err))
	}
}

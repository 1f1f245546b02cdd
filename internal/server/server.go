// Package server provides the HTTP API for VoteSathi.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/assistant"
	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/pkg/utils"
)

// Assistant is the request surface the HTTP API serves.
type Assistant interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	Audio(ctx context.Context, req models.AudioRequest) (*models.ChatResponse, error)
	Image(ctx context.Context, req models.ImageRequest) (*models.ChatResponse, error)
	ExtractDocument(ctx context.Context, imageBase64, mimeType, locale string) (*models.VisionExtractionResult, error)
	SearchBooths(ctx context.Context, q models.BoothQuery) ([]models.BoothRecord, error)
	SetConsent(ctx context.Context, sessionID string, granted bool) (*assistant.Consent, error)
	Consent(ctx context.Context, sessionID string) (*assistant.Consent, error)
	Audit(ctx context.Context, sessionID string, limit int) ([]*models.AuditRecord, error)
}

// Server is the HTTP server for the VoteSathi API.
type Server struct {
	assistant Assistant
	config    *config.ServerConfig
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server. A nil gatherer disables /metrics.
func NewServer(svc Assistant, cfg *config.ServerConfig, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	return &Server{
		assistant: svc,
		config:    cfg,
		gatherer:  gatherer,
		logger:    utils.OrNop(logger),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	timeout := time.Duration(s.config.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/chat/image", s.handleChatImage)
		r.Post("/chat/audio", s.handleChatAudio)
		r.Post("/documents/extract", s.handleExtract)
		r.Get("/booths", s.handleBooths)
		r.Put("/consent", s.handleSetConsent)
		r.Get("/consent/{session}", s.handleGetConsent)
		r.Get("/audit/{session}", s.handleAudit)
	})
	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/assistant"
	"github.com/hyperjump/votesathi/internal/booths"
	"github.com/hyperjump/votesathi/internal/models"
)

// base64 grows payloads by 4/3; leave room for the other JSON fields.
const jsonOverhead = 64 << 10

func (s *Server) imageBodyLimit() int64 {
	return s.config.MaxImageBytes*4/3 + jsonOverhead
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !s.decode(w, r, &req, jsonOverhead) {
		return
	}
	s.logger.Debug("chat request", zap.String("locale", req.Locale), zap.String("session_id", req.SessionID))
	resp, err := s.assistant.Chat(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatImage(w http.ResponseWriter, r *http.Request) {
	var req models.ImageRequest
	if !s.decode(w, r, &req, s.imageBodyLimit()) {
		return
	}
	payload, mime, uerr := checkImage(req.ImageBase64, s.config.MaxImageBytes, s.config.MaxImagePixels)
	if uerr != nil {
		s.respondError(w, uerr.status, uerr.message)
		return
	}
	req.ImageBase64, req.MimeType = payload, mime
	s.logger.Debug("image request", zap.String("mime_type", mime), zap.Bool("with_message", req.Message != ""))
	resp, err := s.assistant.Image(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxAudioBytes+1024*1024)
	if err := r.ParseMultipartForm(s.config.MaxAudioBytes); err != nil {
		if isTooLarge(err) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "audio upload is too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "audio field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.config.MaxAudioBytes+1))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read audio")
		return
	}
	if int64(len(data)) > s.config.MaxAudioBytes {
		s.respondError(w, http.StatusRequestEntityTooLarge, "audio upload is too large")
		return
	}
	if len(data) == 0 {
		s.respondError(w, http.StatusBadRequest, "audio is empty")
		return
	}
	if mime, ok := isAudio(data); !ok {
		s.respondError(w, http.StatusUnsupportedMediaType, "MIME type "+mime+" is not a supported audio format")
		return
	}

	resp, err := s.assistant.Audio(r.Context(), models.AudioRequest{
		Audio:     data,
		Filename:  header.Filename,
		Locale:    r.FormValue("locale"),
		SessionID: r.FormValue("session_id"),
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type extractRequest struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Locale      string `json:"locale"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !s.decode(w, r, &req, s.imageBodyLimit()) {
		return
	}
	payload, mime, uerr := checkImage(req.ImageBase64, s.config.MaxImageBytes, s.config.MaxImagePixels)
	if uerr != nil {
		s.respondError(w, uerr.status, uerr.message)
		return
	}
	res, err := s.assistant.ExtractDocument(r.Context(), payload, mime, req.Locale)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

type boothResult struct {
	Booth     models.BoothRecord `json:"booth"`
	Formatted string             `json:"formatted"`
}

func (s *Server) handleBooths(w http.ResponseWriter, r *http.Request) {
	q := models.BoothQuery{
		Query:  r.URL.Query().Get("q"),
		Locale: r.URL.Query().Get("locale"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		q.Limit = n
	}
	records, err := s.assistant.SearchBooths(r.Context(), q)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	locale := models.NormalizeLocale(q.Locale)
	results := make([]boothResult, len(records))
	for i, b := range records {
		results[i] = boothResult{Booth: b, Formatted: booths.Format(b, locale)}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results, "total": len(results)})
}

type consentRequest struct {
	SessionID string `json:"session_id"`
	Granted   *bool  `json:"granted"`
}

func (s *Server) handleSetConsent(w http.ResponseWriter, r *http.Request) {
	var req consentRequest
	if !s.decode(w, r, &req, jsonOverhead) {
		return
	}
	if req.Granted == nil {
		s.respondError(w, http.StatusBadRequest, "granted is required")
		return
	}
	c, err := s.assistant.SetConsent(r.Context(), req.SessionID, *req.Granted)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": req.SessionID,
		"granted":    c.Granted,
		"updated_at": c.UpdatedAt,
	})
}

func (s *Server) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")
	c, err := s.assistant.Consent(r.Context(), session)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": session,
		"granted":    c.Granted,
		"updated_at": c.UpdatedAt,
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	recs, err := s.assistant.Audit(r.Context(), session, limit)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if recs == nil {
		recs = []*models.AuditRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"records": recs, "total": len(recs)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body of at most limit bytes into v. It writes the
// error response and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if isTooLarge(err) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "request body is too large")
			return false
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// respondServiceError maps assistant errors onto statuses. Pipeline
// failures keep their detail in the log only.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assistant.ErrUnavailable):
		s.respondError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("request timed out", zap.Error(err))
		s.respondError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// Package speech converts spoken questions to text.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/pkg/utils"
)

var (
	// ErrEmptyAudio is returned when no audio bytes are supplied.
	ErrEmptyAudio = errors.New("empty audio")
	// ErrEmptyTranscript is returned when the service recognised no speech.
	ErrEmptyTranscript = errors.New("empty transcript")
)

// Transcriber turns an audio clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (*models.Transcription, error)
}

// WhisperTranscriber calls an OpenAI-compatible /audio/transcriptions endpoint.
type WhisperTranscriber struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewWhisperTranscriber creates a transcriber from cfg. A nil client uses one
// with the configured timeout.
func NewWhisperTranscriber(cfg config.SpeechConfig, client *http.Client, logger *zap.Logger) *WhisperTranscriber {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperTranscriber{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  client,
		logger:  utils.OrNop(logger),
	}
}

type transcriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe uploads audio as multipart form data and returns the transcript.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (*models.Transcription, error) {
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	if filename == "" {
		filename = "audio.webm"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("model", w.model); err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}
	if err := form.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}
	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Warn("transcription request failed", zap.Error(err))
		return nil, fmt.Errorf("transcription API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("transcription API error: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("parsing transcription response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("transcription API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription API error: status %d", resp.StatusCode)
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return nil, ErrEmptyTranscript
	}

	w.logger.Debug("transcribed audio",
		zap.Int("bytes", len(audio)),
		zap.String("language", parsed.Language),
		zap.Duration("took", time.Since(start)))

	return &models.Transcription{
		Text:     text,
		Language: languageCode(parsed.Language),
		Duration: parsed.Duration,
		Model:    w.model,
	}, nil
}

// verbose_json reports full language names.
var languageCodes = map[string]string{
	"english": "en",
	"hindi":   "hi",
	"bengali": "bn",
	"tamil":   "ta",
	"telugu":  "te",
	"marathi": "mr",
	"urdu":    "ur",
}

func languageCode(language string) string {
	if code, ok := languageCodes[strings.ToLower(strings.TrimSpace(language))]; ok {
		return code
	}
	return models.NormalizeLocale(language)
}

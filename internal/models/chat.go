package models

import "time"

// Modality is the input channel of a request.
type Modality string

const (
	ModalityText      Modality = "text"
	ModalityAudio     Modality = "audio"
	ModalityImage     Modality = "image"
	ModalityImageText Modality = "image_text"
)

// RouterType names the pipeline that produced the primary answer.
type RouterType string

const (
	RouteRAG      RouterType = "rag"
	RouteBooth    RouterType = "booth"
	RouteVision   RouterType = "vision"
	RouteFallback RouterType = "fallback"
)

// Source is a citation attached to an answer.
type Source struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// TraceEntry records one retrieved passage that informed an answer.
type TraceEntry struct {
	PassageID string  `json:"passage_id"`
	Title     string  `json:"title,omitempty"`
	Score     float64 `json:"score"`
}

// GenerationResult is a candidate answer from retrieval and generation.
// A nil Escalate means the generator gave no explicit signal.
type GenerationResult struct {
	Text           string       `json:"text"`
	Confidence     float64      `json:"confidence"`
	Sources        []Source     `json:"sources,omitempty"`
	RetrievalTrace []TraceEntry `json:"retrieval_trace,omitempty"`
	Escalate       *bool        `json:"escalate,omitempty"`
	Model          string       `json:"model,omitempty"`
}

// ChatResponse is the assistant's answer to one request.
type ChatResponse struct {
	ID             string       `json:"id"`
	Text           string       `json:"text"`
	Confidence     float64      `json:"confidence"`
	Sources        []Source     `json:"sources"`
	RetrievalTrace []TraceEntry `json:"retrieval_trace"`
	Escalate       bool         `json:"escalate"`
	Modality       Modality     `json:"modality"`
	RouterType     RouterType   `json:"router_type"`
	Locale         string       `json:"locale"`
	Transcript     string       `json:"transcript,omitempty"`
	Cached         bool         `json:"cached"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Transcription is the speech-to-text output for an audio request.
type Transcription struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Model    string  `json:"model,omitempty"`
}

// AuditRecord is appended once per handled request.
type AuditRecord struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	Query      string     `json:"query"`
	Modality   Modality   `json:"modality"`
	RouterType RouterType `json:"router_type"`
	Confidence float64    `json:"confidence"`
	Escalate   bool       `json:"escalate"`
	Cached     bool       `json:"cached"`
	Consent    bool       `json:"consent"`
	LatencyMs  int64      `json:"latency_ms"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Turn is one exchange kept in session memory.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

package models

import (
	"fmt"
	"strings"
)

// DefaultLocale is used when a request omits its locale.
const DefaultLocale = "en"

// MaxMessageLength bounds the size of a text query.
const MaxMessageLength = 2000

// ChatRequest is a text query.
type ChatRequest struct {
	Message   string     `json:"message"`
	Locale    string     `json:"locale,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	Route     RouterType `json:"route,omitempty"` // optional override: "rag" or "booth"
}

// Validate trims the message and applies defaults.
// Returns an error if the message is empty or too long, or the route override is unknown.
func (r *ChatRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if len([]rune(r.Message)) > MaxMessageLength {
		return fmt.Errorf("message exceeds %d characters", MaxMessageLength)
	}
	r.Locale = NormalizeLocale(r.Locale)
	switch r.Route {
	case "", RouteRAG, RouteBooth:
	default:
		return fmt.Errorf("unsupported route %q", r.Route)
	}
	return nil
}

// ImageRequest is a document image with an optional accompanying question.
type ImageRequest struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Message     string `json:"message,omitempty"`
	Locale      string `json:"locale,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
}

// Modality returns ModalityImageText when a question accompanies the image.
func (r *ImageRequest) Modality() Modality {
	if strings.TrimSpace(r.Message) != "" {
		return ModalityImageText
	}
	return ModalityImage
}

// AudioRequest is a recorded voice query.
type AudioRequest struct {
	Audio     []byte
	Filename  string
	Locale    string
	SessionID string
}

// BoothQuery is a direct booth search.
type BoothQuery struct {
	Query  string `json:"q"`
	Limit  int    `json:"limit,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// Validate ensures the query is non-empty and normalizes limit and locale.
func (q *BoothQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Limit > 50 {
		q.Limit = 50
	}
	q.Locale = NormalizeLocale(q.Locale)
	return nil
}

// NormalizeLocale lowercases locale and strips any region ("hi-IN" -> "hi").
// An empty locale becomes DefaultLocale.
func NormalizeLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(l, "-_"); i > 0 {
		l = l[:i]
	}
	if l == "" {
		return DefaultLocale
	}
	return l
}

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"mr": "Marathi",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
}

// LanguageName returns the English name of a normalized locale, defaulting to English.
func LanguageName(locale string) string {
	if n, ok := languageNames[locale]; ok {
		return n
	}
	return "English"
}

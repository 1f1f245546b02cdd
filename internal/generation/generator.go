// Package generation provides the language model client used for answers and document extraction.
package generation

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model replies without any text content.
var ErrEmptyResponse = errors.New("no text content in model response")

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part is one content block. Exactly one of Text or ImageBase64 is set.
type Part struct {
	Text        string
	ImageBase64 string
	MimeType    string
}

// Message is one conversation turn.
type Message struct {
	Role  Role
	Parts []Part
}

// Request is a single generation call.
type Request struct {
	Model       string // empty uses the generator's default
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Response is the model's text reply.
type Response struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Generator calls a language model. Transport failures are returned as errors;
// a successful call with malformed content is returned as text.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// UserText builds a user message with a single text part.
func UserText(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{{Text: text}}}
}

// AssistantText builds an assistant message with a single text part.
func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{{Text: text}}}
}

// UserImage builds a user message with an image followed by an instruction.
func UserImage(imageBase64, mimeType, text string) Message {
	parts := []Part{{ImageBase64: imageBase64, MimeType: mimeType}}
	if text != "" {
		parts = append(parts, Part{Text: text})
	}
	return Message{Role: RoleUser, Parts: parts}
}

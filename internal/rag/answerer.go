// Package rag answers citizen questions from the knowledge base with the language model.
package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/generation"
	"github.com/hyperjump/votesathi/internal/keyword"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/pkg/utils"
)

const (
	// UnstructuredConfidence is assigned when the model reply is not the expected JSON.
	UnstructuredConfidence = 0.5
	// UngroundedMaxConfidence caps answers produced without any retrieved passage.
	UngroundedMaxConfidence = 0.5

	snippetLength = 160
)

// Answerer retrieves passages and asks the generator for a grounded answer.
type Answerer struct {
	index       keyword.PassageIndex
	gen         generation.Generator
	topK        int
	maxTokens   int
	temperature float64
	topP        float64
	timeout     time.Duration
	searchOpts  *keyword.SearchOptions
	logger      *zap.Logger
}

// NewAnswerer creates an answerer. index may be nil, in which case answers
// are ungrounded.
func NewAnswerer(index keyword.PassageIndex, gen generation.Generator, genCfg config.GenerationConfig, topK int, logger *zap.Logger) *Answerer {
	if topK <= 0 {
		topK = 4
	}
	timeout := time.Duration(genCfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Answerer{
		index:       index,
		gen:         gen,
		topK:        topK,
		maxTokens:   genCfg.MaxTokens,
		temperature: genCfg.Temperature,
		topP:        genCfg.TopP,
		timeout:     timeout,
		searchOpts:  &keyword.SearchOptions{TitleBoost: 2, FuzzyEnabled: true, Fuzziness: 1},
		logger:      utils.OrNop(logger),
	}
}

type structuredAnswer struct {
	Answer     string   `json:"answer"`
	Confidence *float64 `json:"confidence"`
	Escalate   *bool    `json:"escalate"`
}

// Answer returns a grounded answer for query. A nil result with a nil error
// means the model produced no text. Generator failures are returned as errors.
func (a *Answerer) Answer(ctx context.Context, query, locale string, history []models.Turn) (*models.GenerationResult, error) {
	passages := a.retrieve(ctx, query)

	genCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	resp, err := a.gen.Generate(genCtx, &generation.Request{
		System:      systemPrompt,
		Messages:    []generation.Message{generation.UserText(buildPrompt(query, locale, passages, history))},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		TopP:        a.topP,
	})
	if errors.Is(err, generation.ErrEmptyResponse) {
		a.logger.Warn("rag empty model reply")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rag generation: %w", err)
	}

	result := parseAnswer(resp.Text)
	result.Model = resp.Model
	if len(passages) == 0 && result.Confidence > UngroundedMaxConfidence {
		result.Confidence = UngroundedMaxConfidence
	}
	result.Sources, result.RetrievalTrace = citations(passages)

	a.logger.Debug("rag answered",
		zap.Int("passages", len(passages)),
		zap.Float64("confidence", result.Confidence))
	return result, nil
}

// retrieve returns the top passages, or none when the index is absent or fails.
func (a *Answerer) retrieve(ctx context.Context, query string) []*models.Passage {
	if a.index == nil {
		return nil
	}
	passages, err := a.index.Search(ctx, query, a.topK, a.searchOpts)
	if err != nil {
		a.logger.Warn("rag retrieval failed", zap.Error(err))
		return nil
	}
	return passages
}

// parseAnswer reads the structured reply. Anything else is kept as raw text
// with UnstructuredConfidence and no escalation signal.
func parseAnswer(text string) *models.GenerationResult {
	raw := strings.TrimSpace(text)
	if obj := utils.ExtractJSON(raw); obj != "" {
		var sa structuredAnswer
		if err := json.Unmarshal([]byte(obj), &sa); err == nil && strings.TrimSpace(sa.Answer) != "" {
			conf := UnstructuredConfidence
			if sa.Confidence != nil {
				conf = utils.Clamp01(*sa.Confidence)
			}
			return &models.GenerationResult{
				Text:       strings.TrimSpace(sa.Answer),
				Confidence: conf,
				Escalate:   sa.Escalate,
			}
		}
	}
	return &models.GenerationResult{Text: raw, Confidence: UnstructuredConfidence}
}

func citations(passages []*models.Passage) ([]models.Source, []models.TraceEntry) {
	if len(passages) == 0 {
		return nil, nil
	}
	sources := make([]models.Source, 0, len(passages))
	trace := make([]models.TraceEntry, 0, len(passages))
	seen := make(map[string]bool)
	for _, p := range passages {
		trace = append(trace, models.TraceEntry{PassageID: p.ID, Title: p.Title, Score: utils.Round2(p.Score)})
		if seen[p.DocumentID] {
			continue
		}
		seen[p.DocumentID] = true
		sources = append(sources, models.Source{
			ID:      p.DocumentID,
			Title:   p.Title,
			Snippet: utils.Truncate(p.Content, snippetLength),
			Score:   utils.Round2(p.Score),
		})
	}
	return sources, trace
}

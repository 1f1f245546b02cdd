package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/pkg/utils"
)

// AnthropicGenerator implements Generator with the Anthropic Messages API.
type AnthropicGenerator struct {
	client   anthropic.Client
	model    string
	defaults config.GenerationConfig
	logger   *zap.Logger
}

// NewAnthropicGenerator creates a generator from cfg. Extra request options
// (for example a base URL in tests) are appended after the config-derived ones.
func NewAnthropicGenerator(cfg config.GenerationConfig, logger *zap.Logger, opts ...option.RequestOption) *AnthropicGenerator {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.TimeoutSeconds > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}
	reqOpts = append(reqOpts, opts...)
	return &AnthropicGenerator{
		client:   anthropic.NewClient(reqOpts...),
		model:    cfg.Model,
		defaults: cfg,
		logger:   utils.OrNop(logger),
	}
}

// Generate sends req and returns the first text block of the reply.
func (g *AnthropicGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	params, err := g.buildParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	message, err := g.client.Messages.New(ctx, params)
	if err != nil {
		g.logger.Warn("anthropic request failed", zap.String("model", string(params.Model)), zap.Error(err))
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	resp := &Response{
		Model:        string(message.Model),
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	resp.Text = text.String()
	g.logger.Debug("anthropic response",
		zap.String("model", resp.Model),
		zap.Int("size", len(resp.Text)),
		zap.Int64("tokens_in", resp.InputTokens),
		zap.Int64("tokens_out", resp.OutputTokens),
		zap.Duration("took", time.Since(start)))
	if strings.TrimSpace(resp.Text) == "" {
		return resp, ErrEmptyResponse
	}
	return resp, nil
}

func (g *AnthropicGenerator) buildParams(req *Request) (anthropic.MessageNewParams, error) {
	if req == nil || len(req.Messages) == 0 {
		return anthropic.MessageNewParams{}, fmt.Errorf("generation request has no messages")
	}
	model := req.Model
	if model == "" {
		model = g.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.defaults.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = g.defaults.Temperature
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
	}
	if req.TopP > 0 {
		params.TopP = anthropic.Float(req.TopP)
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	for _, m := range req.Messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch {
			case p.ImageBase64 != "":
				blocks = append(blocks, anthropic.NewImageBlockBase64(p.MimeType, p.ImageBase64))
			case p.Text != "":
				blocks = append(blocks, anthropic.NewTextBlock(p.Text))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
		}
	}
	if len(params.Messages) == 0 {
		return anthropic.MessageNewParams{}, fmt.Errorf("generation request has no content")
	}
	return params, nil
}

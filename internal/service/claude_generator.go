package service

import (
	"context"
	"fmt"
	"strings"

	"campaign-bot/pkg/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// ClaudeGenerator produces answers through the Anthropic Messages API.
type ClaudeGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewClaudeGenerator(cfg *config.AnthropicConfig, llmCfg *config.LLMConfig, logger *zap.Logger) (*ClaudeGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required for the claude provider")
	}

	maxTokens := llmCfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 600
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	logger.Info("Using Claude model", zap.String("model", cfg.Model))

	return &ClaudeGenerator{
		client:      client,
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: llmCfg.Temperature,
		logger:      logger,
	}, nil
}

func (g *ClaudeGenerator) Complete(ctx context.Context, contextItems []string, query, language string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(contextItems, query, language))),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemInstruction(language)},
		},
	}
	if g.temperature > 0 {
		params.Temperature = anthropic.Float(g.temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(b.String()), nil
}

func (g *ClaudeGenerator) Name() string {
	return "claude"
}

func (g *ClaudeGenerator) Close() error {
	return nil
}

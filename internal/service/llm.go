package service

import (
	"context"
	"fmt"
	"strings"

	"campaign-bot/pkg/config"

	"go.uber.org/zap"
)

// Generator produces a grounded natural-language answer from ranked context
// items. Implementations wrap one external text-generation provider; a
// failure surfaces as an error and is never retried here.
type Generator interface {
	Complete(ctx context.Context, contextItems []string, query, language string) (string, error)
	Name() string
	Close() error
}

// NewGenerator creates the text-generation provider selected by configuration.
func NewGenerator(cfg *config.Config, logger *zap.Logger) (Generator, error) {
	provider := strings.ToLower(cfg.LLM.Provider)
	logger.Info("Initializing text generation provider", zap.String("provider", provider))

	switch provider {
	case "gigachat":
		gen, err := NewGigaChatGenerator(&cfg.GigaChat, logger)
		if err != nil {
			return nil, err
		}
		return gen, nil
	case "claude":
		gen, err := NewClaudeGenerator(&cfg.Anthropic, &cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}

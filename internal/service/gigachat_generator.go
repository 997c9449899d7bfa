package service

import (
	"context"
	"fmt"
	"strings"

	"campaign-bot/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

const gigaChatTemperature = 0.3

// GigaChatGenerator produces answers through the GigaChat API.
type GigaChatGenerator struct {
	client *gigago.Client
	config *config.GigaChatConfig
	logger *zap.Logger
}

func NewGigaChatGenerator(cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatGenerator, error) {
	ctx := context.Background()

	// Build client options
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	logger.Info("Using GigaChat model")

	return &GigaChatGenerator{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Complete generates one grounded answer. The generative model is rebuilt per
// call because the system instruction depends on the reply language.
func (g *GigaChatGenerator) Complete(ctx context.Context, contextItems []string, query, language string) (string, error) {
	model := g.client.GenerativeModel("GigaChat")
	model.SystemInstruction = systemInstruction(language)
	model.Temperature = gigaChatTemperature

	prompt := buildPrompt(contextItems, query, language)
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *GigaChatGenerator) Name() string {
	return "gigachat"
}

func (g *GigaChatGenerator) Close() error {
	if g.client != nil {
		g.client.Close()
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"campaign-bot/internal/models"
	"campaign-bot/pkg/config"

	"go.uber.org/zap"
)

const (
	maxReplyLength    = 1500
	pageExcerptLength = 600
)

// PageTextProvider supplies fresh cached page content used as supplementary
// generation evidence.
type PageTextProvider interface {
	PageExcerpt(ctx context.Context, url string, maxLen int) (string, error)
}

// ResponderService assembles the final reply from ranked matches: a verbatim
// FAQ answer on a high-confidence hit, a generated answer grounded in the top
// context items otherwise, and fixed or degraded fallbacks when neither is
// possible.
type ResponderService struct {
	generator Generator
	pages     PageTextProvider
	retrieval *config.RetrievalConfig
	llm       *config.LLMConfig
	logger    *zap.Logger
}

func NewResponderService(
	generator Generator,
	pages PageTextProvider,
	retrievalCfg *config.RetrievalConfig,
	llmCfg *config.LLMConfig,
	logger *zap.Logger,
) *ResponderService {
	return &ResponderService{
		generator: generator,
		pages:     pages,
		retrieval: retrievalCfg,
		llm:       llmCfg,
		logger:    logger,
	}
}

// Assemble turns the ranked matches for one query into a reply. It never
// returns an error: a missing generator, a generation failure or an empty
// ranking each map to a defined fallback reply.
func (s *ResponderService) Assemble(ctx context.Context, qc models.QueryContext, ranked []models.ScoredItem) models.Reply {
	if len(ranked) == 0 {
		return s.noInformation(qc.Language)
	}

	top := ranked[0]
	if top.Score >= s.retrieval.HighConfidence && top.Item.ContentType == models.ContentTypeFAQ {
		return models.Reply{
			Text:          top.Item.Text,
			Language:      qc.Language,
			Confidence:    top.Score,
			Sources:       []models.Source{itemSource(top.Item)},
			TopicsCovered: []string{top.Item.Topic},
			Type:          models.ReplyTypeFAQ,
		}
	}

	if s.generator == nil {
		s.logger.Warn("Text generation unavailable, serving degraded reply")
		return s.degraded(qc, top)
	}

	contextItems := ranked
	if s.retrieval.ContextSize > 0 && len(contextItems) > s.retrieval.ContextSize {
		contextItems = contextItems[:s.retrieval.ContextSize]
	}
	blocks := s.contextBlocks(ctx, contextItems)

	genCtx, cancel := context.WithTimeout(ctx, s.llm.Timeout)
	defer cancel()

	text, err := s.generator.Complete(genCtx, blocks, qc.RawText, qc.Language)
	if err != nil {
		s.logger.Warn("Text generation failed, serving degraded reply",
			zap.String("provider", s.generator.Name()),
			zap.Error(err),
		)
		return s.degraded(qc, top)
	}

	text = strings.TrimSpace(sanitizeUTF8(text))
	if text == "" {
		s.logger.Warn("Text generation returned empty reply, serving degraded reply")
		return s.degraded(qc, top)
	}
	text = truncateAtSentence(text, maxReplyLength)

	return models.Reply{
		Text:          text,
		Language:      qc.Language,
		Confidence:    s.generatedConfidence(contextItems),
		Sources:       dedupeSources(contextItems),
		TopicsCovered: dedupeTopics(contextItems),
		Type:          models.ReplyTypeGenerated,
	}
}

func (s *ResponderService) noInformation(language string) models.Reply {
	return models.Reply{
		Text:          noInformationText(language),
		Language:      language,
		Confidence:    0,
		Sources:       []models.Source{},
		TopicsCovered: []string{},
		Type:          models.ReplyTypeNoInformation,
	}
}

// degraded serves the best-ranked item's raw text when generation is not
// available. Availability wins over response richness here.
func (s *ResponderService) degraded(qc models.QueryContext, top models.ScoredItem) models.Reply {
	return models.Reply{
		Text:          top.Item.Text,
		Language:      qc.Language,
		Confidence:    top.Score * top.Item.ConfidenceBase,
		Sources:       []models.Source{itemSource(top.Item)},
		TopicsCovered: []string{top.Item.Topic},
		Type:          models.ReplyTypeDegraded,
	}
}

// contextBlocks renders ranked items into the fact blocks handed to the
// generator. When the content cache holds a fresh page for the top source
// of primary or verified credibility, an excerpt is appended as extra
// evidence.
func (s *ResponderService) contextBlocks(ctx context.Context, items []models.ScoredItem) []string {
	blocks := make([]string, 0, len(items)+1)
	for _, scored := range items {
		annotation := fmt.Sprintf("[Relevance: %.2f, Source: %s", scored.Score, scored.Item.Credibility)
		if scored.Item.PublishedAt != nil {
			annotation += ", Published: " + scored.Item.PublishedAt.Format("2006-01-02")
		}
		annotation += "]"
		blocks = append(blocks, fmt.Sprintf("=== %s ===\n%s\n%s",
			strings.ToUpper(scored.Item.Topic), annotation, scored.Item.Text))
	}

	if s.pages == nil {
		return blocks
	}

	top := items[0].Item
	if top.SourceURL == "" {
		return blocks
	}
	if top.Credibility != models.CredibilityPrimary && top.Credibility != models.CredibilityVerified {
		return blocks
	}

	excerpt, err := s.pages.PageExcerpt(ctx, top.SourceURL, pageExcerptLength)
	if err != nil {
		s.logger.Debug("No page excerpt for top source", zap.String("url", top.SourceURL), zap.Error(err))
		return blocks
	}
	if excerpt != "" {
		blocks = append(blocks, "=== CURRENT PAGE CONTENT ===\n"+excerpt)
	}

	return blocks
}

// generatedConfidence is the mean score of the context items damped by the
// fallback factor, clamped to [0,1].
func (s *ResponderService) generatedConfidence(items []models.ScoredItem) float64 {
	if len(items) == 0 {
		return 0
	}

	var sum float64
	for _, scored := range items {
		sum += scored.Score
	}

	confidence := sum / float64(len(items)) * s.retrieval.FallbackFactor
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

func itemSource(item models.KnowledgeItem) models.Source {
	return models.Source{
		URL:         item.SourceURL,
		Title:       item.SourceTitle,
		Credibility: item.Credibility,
	}
}

func dedupeSources(items []models.ScoredItem) []models.Source {
	seen := make(map[string]bool)
	sources := make([]models.Source, 0, len(items))
	for _, scored := range items {
		url := scored.Item.SourceURL
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		sources = append(sources, itemSource(scored.Item))
	}
	return sources
}

func dedupeTopics(items []models.ScoredItem) []string {
	seen := make(map[string]bool)
	topics := make([]string, 0, len(items))
	for _, scored := range items {
		topic := scored.Item.Topic
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		topics = append(topics, topic)
	}
	return topics
}

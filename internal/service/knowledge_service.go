package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"campaign-bot/internal/models"

	"go.uber.org/zap"
)

// CorpusSource is the persistence boundary the knowledge store loads from.
type CorpusSource interface {
	ListItems(ctx context.Context) ([]models.KnowledgeItem, error)
	ListTopics(ctx context.Context) ([]models.TopicConfig, error)
}

// StoreStats describes the currently served knowledge snapshot.
type StoreStats struct {
	Loaded        bool
	Revision      uint64
	ItemCount     int
	TopicCount    int
	ByContentType map[string]int
	Languages     []string
	LoadedAt      time.Time
}

// KnowledgeService owns the in-memory knowledge store. A load builds the new
// snapshot completely off to the side and swaps it in atomically, so readers
// always see either the old or the new corpus, never a mix.
type KnowledgeService struct {
	source  CorpusSource
	current atomic.Pointer[Snapshot]
	logger  *zap.Logger
}

func NewKnowledgeService(source CorpusSource, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{
		source: source,
		logger: logger,
	}
}

// Load reads the whole corpus, validates it and swaps it in as the current
// snapshot. On error the previous snapshot keeps serving.
func (s *KnowledgeService) Load(ctx context.Context) error {
	items, err := s.source.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load knowledge items: %w", err)
	}

	topics, err := s.source.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("failed to load topic configuration: %w", err)
	}

	valid := s.validate(items)
	snap := NewSnapshot(valid, topics)

	snap.revision = 1
	if prev := s.current.Load(); prev != nil {
		snap.revision = prev.revision + 1
	}
	s.current.Store(snap)

	s.logger.Info("Knowledge store loaded",
		zap.Uint64("revision", snap.revision),
		zap.Int("items", snap.Len()),
		zap.Int("skipped", len(items)-len(valid)),
		zap.Int("topics", snap.TopicCount()),
		zap.Strings("languages", snap.Languages()),
	)

	return nil
}

// Snapshot returns the current store view, or nil when no load has succeeded
// yet.
func (s *KnowledgeService) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *KnowledgeService) Stats() StoreStats {
	snap := s.current.Load()
	if snap == nil {
		return StoreStats{}
	}

	return StoreStats{
		Loaded:        true,
		Revision:      snap.Revision(),
		ItemCount:     snap.Len(),
		TopicCount:    snap.TopicCount(),
		ByContentType: snap.CountByContentType(),
		Languages:     snap.Languages(),
		LoadedAt:      snap.LoadedAt(),
	}
}

// SourceURLs lists the distinct source URLs of the current snapshot, for the
// content refresh cycle.
func (s *KnowledgeService) SourceURLs() []string {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	return snap.SourceURLs()
}

// validate drops items that break store invariants and normalizes the rest.
// On duplicate ids the first occurrence wins.
func (s *KnowledgeService) validate(items []models.KnowledgeItem) []models.KnowledgeItem {
	seen := make(map[string]bool, len(items))
	valid := make([]models.KnowledgeItem, 0, len(items))

	for _, item := range items {
		if item.ID == "" || item.Text == "" {
			s.logger.Warn("Skipping knowledge item without id or text", zap.String("id", item.ID))
			continue
		}
		if seen[item.ID] {
			s.logger.Warn("Skipping duplicate knowledge item", zap.String("id", item.ID))
			continue
		}
		if !item.ContentType.Valid() {
			s.logger.Warn("Skipping knowledge item with unknown content type",
				zap.String("id", item.ID),
				zap.String("content_type", string(item.ContentType)),
			)
			continue
		}
		if !item.Credibility.Valid() {
			s.logger.Warn("Skipping knowledge item with unknown credibility",
				zap.String("id", item.ID),
				zap.String("credibility", string(item.Credibility)),
			)
			continue
		}

		if item.Language == "" {
			item.Language = LangEnglish
		}
		if item.ConfidenceBase < 0 {
			item.ConfidenceBase = 0
		}
		if item.ConfidenceBase > 1 {
			item.ConfidenceBase = 1
		}

		seen[item.ID] = true
		valid = append(valid, item)
	}

	return valid
}

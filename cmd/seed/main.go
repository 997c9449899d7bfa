package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"campaign-bot/internal/models"
	"campaign-bot/internal/repository"
	"campaign-bot/pkg/config"
	"campaign-bot/pkg/logger"
	"campaign-bot/pkg/postgres"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.EnsureSchema(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	seedDir := "seed"
	cacheFile := filepath.Join(seedDir, ".seed_cache.json")
	if err := seedCampaignKnowledge(ctx, seedDir, cacheFile, knowledgeRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed campaign knowledge", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

// seedItem mirrors one entry of seed/knowledge.yaml.
type seedItem struct {
	ID             string   `yaml:"id"`
	ContentType    string   `yaml:"content_type"`
	Topic          string   `yaml:"topic"`
	Subtopic       string   `yaml:"subtopic"`
	Language       string   `yaml:"language"`
	Keywords       []string `yaml:"keywords"`
	SourceURL      string   `yaml:"source_url"`
	SourceTitle    string   `yaml:"source_title"`
	SourceAuthor   string   `yaml:"source_author"`
	PublishedAt    string   `yaml:"published_at"`
	Credibility    string   `yaml:"credibility"`
	ConfidenceBase float64  `yaml:"confidence_base"`
	Text           string   `yaml:"text"`
}

type knowledgeFile struct {
	Items []seedItem `yaml:"items"`
}

// seedTopic mirrors one entry of seed/topics.yaml.
type seedTopic struct {
	Topic        string              `yaml:"topic"`
	Subtopics    []string            `yaml:"subtopics"`
	Synonyms     []string            `yaml:"synonyms"`
	Translations map[string][]string `yaml:"translations"`
}

type topicsFile struct {
	Topics []seedTopic `yaml:"topics"`
}

// ProcessedFile represents a processed seed file in cache
type ProcessedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	ProcessedAt time.Time `json:"processed_at"`
}

// CacheData stores information about processed files
type CacheData struct {
	ProcessedFiles map[string]ProcessedFile `json:"processed_files"` // key: file path
}

// loadCache loads the cache of processed files
func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{
		ProcessedFiles: make(map[string]ProcessedFile),
	}

	// Check if cache file exists
	if _, err := os.Stat(cacheFile); os.IsNotExist(err) {
		return cache, nil
	}

	// Read cache file
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}

	return cache, nil
}

// saveCache saves the cache of processed files
func saveCache(cacheFile string, cache *CacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// calculateFileHash calculates MD5 hash of a file
func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// fileNeedsProcessing checks the cache and reports whether the seed file
// changed since the last run. An unreadable hash means process anyway.
func fileNeedsProcessing(cache *CacheData, path string, logger *zap.Logger) (bool, string) {
	fileHash, err := calculateFileHash(path)
	if err != nil {
		logger.Warn("Failed to calculate file hash, will process anyway", zap.String("path", path), zap.Error(err))
		return true, ""
	}

	if cached, exists := cache.ProcessedFiles[path]; exists {
		if cached.FileHash == fileHash {
			logger.Info("Seed file unchanged, skipping",
				zap.String("path", path),
				zap.Time("processed_at", cached.ProcessedAt),
			)
			return false, fileHash
		}
		logger.Info("Seed file changed, reprocessing",
			zap.String("path", path),
			zap.String("old_hash", cached.FileHash),
			zap.String("new_hash", fileHash),
		)
	}

	return true, fileHash
}

// seedCampaignKnowledge loads the knowledge corpus and topic hierarchy from
// the YAML seed files and upserts them into Postgres. Files whose hash is
// unchanged since the previous run are skipped.
func seedCampaignKnowledge(
	ctx context.Context,
	seedDir string,
	cacheFile string,
	repo *repository.KnowledgeRepository,
	logger *zap.Logger,
) error {
	now := time.Now()

	// Load cache
	cache, err := loadCache(cacheFile)
	if err != nil {
		logger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = &CacheData{ProcessedFiles: make(map[string]ProcessedFile)}
	}

	knowledgePath := filepath.Join(seedDir, "knowledge.yaml")
	if process, fileHash := fileNeedsProcessing(cache, knowledgePath, logger); process {
		count, err := seedItems(ctx, knowledgePath, repo, logger)
		if err != nil {
			return err
		}
		logger.Info("Seeded knowledge items", zap.String("path", knowledgePath), zap.Int("items", count))
		cache.ProcessedFiles[knowledgePath] = ProcessedFile{
			FilePath:    knowledgePath,
			FileHash:    fileHash,
			ProcessedAt: now,
		}
	}

	topicsPath := filepath.Join(seedDir, "topics.yaml")
	if process, fileHash := fileNeedsProcessing(cache, topicsPath, logger); process {
		count, err := seedTopics(ctx, topicsPath, repo, logger)
		if err != nil {
			return err
		}
		logger.Info("Seeded topic hierarchy", zap.String("path", topicsPath), zap.Int("topics", count))
		cache.ProcessedFiles[topicsPath] = ProcessedFile{
			FilePath:    topicsPath,
			FileHash:    fileHash,
			ProcessedAt: now,
		}
	}

	// Save cache
	if err := saveCache(cacheFile, cache); err != nil {
		logger.Warn("Failed to save cache", zap.Error(err))
	} else {
		logger.Info("Cache saved", zap.Int("processed_files", len(cache.ProcessedFiles)))
	}

	return nil
}

// seedItems parses knowledge.yaml and upserts every valid item. Invalid
// entries are logged and skipped so one bad record never blocks the rest.
func seedItems(ctx context.Context, path string, repo *repository.KnowledgeRepository, logger *zap.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file knowledgeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	count := 0
	for _, entry := range file.Items {
		item, err := buildKnowledgeItem(entry)
		if err != nil {
			logger.Warn("Skipping invalid knowledge item", zap.String("id", entry.ID), zap.Error(err))
			continue
		}

		if err := repo.Upsert(ctx, item); err != nil {
			logger.Error("Failed to upsert knowledge item", zap.String("id", item.ID), zap.Error(err))
			continue
		}

		logger.Debug("Upserted knowledge item",
			zap.String("id", item.ID),
			zap.String("type", string(item.ContentType)),
			zap.String("topic", item.Topic),
		)
		count++
	}

	return count, nil
}

// seedTopics parses topics.yaml and upserts the topic hierarchy.
func seedTopics(ctx context.Context, path string, repo *repository.KnowledgeRepository, logger *zap.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file topicsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	count := 0
	for _, entry := range file.Topics {
		if entry.Topic == "" {
			logger.Warn("Skipping topic entry with empty name")
			continue
		}

		tc := &models.TopicConfig{
			Topic:        entry.Topic,
			Subtopics:    entry.Subtopics,
			Synonyms:     entry.Synonyms,
			Translations: entry.Translations,
		}

		if err := repo.UpsertTopic(ctx, tc); err != nil {
			logger.Error("Failed to upsert topic", zap.String("topic", tc.Topic), zap.Error(err))
			continue
		}

		count++
	}

	return count, nil
}

// buildKnowledgeItem validates a raw seed entry and converts it to the
// domain model. Confidence defaults to 1.0 when the field is omitted.
func buildKnowledgeItem(entry seedItem) (*models.KnowledgeItem, error) {
	if entry.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	if entry.Text == "" {
		return nil, fmt.Errorf("missing text")
	}
	if entry.Topic == "" {
		return nil, fmt.Errorf("missing topic")
	}

	contentType := models.ContentType(entry.ContentType)
	if !contentType.Valid() {
		return nil, fmt.Errorf("unknown content type %q", entry.ContentType)
	}

	credibility := models.Credibility(entry.Credibility)
	if !credibility.Valid() {
		return nil, fmt.Errorf("unknown credibility %q", entry.Credibility)
	}

	language := entry.Language
	if language == "" {
		language = "en"
	}

	confidence := entry.ConfidenceBase
	if confidence == 0 {
		confidence = 1.0
	}
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence_base %v out of range", entry.ConfidenceBase)
	}

	var publishedAt *time.Time
	if entry.PublishedAt != "" {
		parsed, err := time.Parse("2006-01-02", entry.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("bad published_at %q: %w", entry.PublishedAt, err)
		}
		publishedAt = &parsed
	}

	return &models.KnowledgeItem{
		ID:             entry.ID,
		ContentType:    contentType,
		Text:           entry.Text,
		Topic:          entry.Topic,
		Subtopic:       entry.Subtopic,
		Keywords:       entry.Keywords,
		Language:       language,
		SourceURL:      entry.SourceURL,
		SourceTitle:    entry.SourceTitle,
		SourceAuthor:   entry.SourceAuthor,
		PublishedAt:    publishedAt,
		Credibility:    credibility,
		ConfidenceBase: confidence,
	}, nil
}

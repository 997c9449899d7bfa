package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// schemaStatements are executed one at a time because pgx runs Exec through
// the extended protocol, which rejects multi-statement strings.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS knowledge_items (
		id TEXT PRIMARY KEY,
		content_type TEXT NOT NULL,
		content TEXT NOT NULL,
		topic TEXT NOT NULL,
		subtopic TEXT NOT NULL DEFAULT '',
		keywords TEXT[] NOT NULL DEFAULT '{}',
		language TEXT NOT NULL DEFAULT 'en',
		source_url TEXT NOT NULL DEFAULT '',
		source_title TEXT NOT NULL DEFAULT '',
		source_author TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMPTZ,
		credibility TEXT NOT NULL DEFAULT 'unverified',
		confidence_base DOUBLE PRECISION NOT NULL DEFAULT 1.0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_knowledge_items_topic ON knowledge_items (topic)`,
	`CREATE INDEX IF NOT EXISTS idx_knowledge_items_language ON knowledge_items (language)`,
	`CREATE TABLE IF NOT EXISTS topic_synonyms (
		topic TEXT PRIMARY KEY,
		subtopics TEXT[] NOT NULL DEFAULT '{}',
		synonyms TEXT[] NOT NULL DEFAULT '{}',
		translations TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS page_cache (
		id UUID PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		text_content TEXT NOT NULL DEFAULT '',
		fetched_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_page_cache_fetched_at ON page_cache (fetched_at DESC)`,
}

// EnsureSchema creates the tables the service reads from if they do not
// exist yet. Safe to run repeatedly.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	logger.Info("Database schema ensured")
	return nil
}

package repository

import (
	"context"
	"encoding/json"

	"campaign-bot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type KnowledgeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *KnowledgeRepository) Upsert(ctx context.Context, item *models.KnowledgeItem) error {
	query := squirrel.Insert("knowledge_items").
		Columns("id", "content_type", "content", "topic", "subtopic", "keywords", "language",
			"source_url", "source_title", "source_author", "published_at",
			"credibility", "confidence_base", "updated_at").
		Values(item.ID, item.ContentType, item.Text, item.Topic, item.Subtopic, item.Keywords, item.Language,
			item.SourceURL, item.SourceTitle, item.SourceAuthor, item.PublishedAt,
			item.Credibility, item.ConfidenceBase, squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			content_type = EXCLUDED.content_type,
			content = EXCLUDED.content,
			topic = EXCLUDED.topic,
			subtopic = EXCLUDED.subtopic,
			keywords = EXCLUDED.keywords,
			language = EXCLUDED.language,
			source_url = EXCLUDED.source_url,
			source_title = EXCLUDED.source_title,
			source_author = EXCLUDED.source_author,
			published_at = EXCLUDED.published_at,
			credibility = EXCLUDED.credibility,
			confidence_base = EXCLUDED.confidence_base,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *KnowledgeRepository) ListItems(ctx context.Context) ([]models.KnowledgeItem, error) {
	query := squirrel.Select("id", "content_type", "content", "topic", "subtopic", "keywords", "language",
		"source_url", "source_title", "source_author", "published_at",
		"credibility", "confidence_base", "updated_at").
		From("knowledge_items").
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.KnowledgeItem
	for rows.Next() {
		var item models.KnowledgeItem
		if err := rows.Scan(
			&item.ID, &item.ContentType, &item.Text, &item.Topic, &item.Subtopic, &item.Keywords, &item.Language,
			&item.SourceURL, &item.SourceTitle, &item.SourceAuthor, &item.PublishedAt,
			&item.Credibility, &item.ConfidenceBase, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *KnowledgeRepository) UpsertTopic(ctx context.Context, tc *models.TopicConfig) error {
	translations, err := json.Marshal(tc.Translations)
	if err != nil {
		return err
	}

	query := squirrel.Insert("topic_synonyms").
		Columns("topic", "subtopics", "synonyms", "translations").
		Values(tc.Topic, tc.Subtopics, tc.Synonyms, string(translations)).
		Suffix(`ON CONFLICT (topic) DO UPDATE SET
			subtopics = EXCLUDED.subtopics,
			synonyms = EXCLUDED.synonyms,
			translations = EXCLUDED.translations`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *KnowledgeRepository) ListTopics(ctx context.Context) ([]models.TopicConfig, error) {
	query := squirrel.Select("topic", "subtopics", "synonyms", "translations").
		From("topic_synonyms").
		OrderBy("topic ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []models.TopicConfig
	for rows.Next() {
		var tc models.TopicConfig
		var translations string
		if err := rows.Scan(&tc.Topic, &tc.Subtopics, &tc.Synonyms, &translations); err != nil {
			return nil, err
		}
		if translations != "" {
			if err := json.Unmarshal([]byte(translations), &tc.Translations); err != nil {
				r.logger.Warn("Skipping malformed topic translations", zap.String("topic", tc.Topic), zap.Error(err))
				tc.Translations = nil
			}
		}
		topics = append(topics, tc)
	}

	return topics, rows.Err()
}

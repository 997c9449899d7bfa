package repository

import (
	"context"
	"errors"

	"campaign-bot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrPageNotFound = errors.New("page not found")

type PageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPageRepository(db *pgxpool.Pool, logger *zap.Logger) *PageRepository {
	return &PageRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PageRepository) GetByURL(ctx context.Context, url string) (*models.Page, error) {
	query := squirrel.Select("id", "url", "title", "text_content", "fetched_at", "created_at").
		From("page_cache").
		Where(squirrel.Eq{"url": url}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var page models.Page
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&page.ID, &page.URL, &page.Title, &page.Text, &page.FetchedAt, &page.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, err
	}

	return &page, nil
}

func (r *PageRepository) Upsert(ctx context.Context, page *models.Page) error {
	query := squirrel.Insert("page_cache").
		Columns("id", "url", "title", "text_content", "fetched_at", "created_at").
		Values(page.ID, page.URL, page.Title, page.Text, page.FetchedAt, squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			text_content = EXCLUDED.text_content,
			fetched_at = EXCLUDED.fetched_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PageRepository) List(ctx context.Context, limit, offset int) ([]*models.Page, error) {
	query := squirrel.Select("id", "url", "title", "text_content", "fetched_at", "created_at").
		From("page_cache").
		OrderBy("fetched_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
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

	var pages []*models.Page
	for rows.Next() {
		var page models.Page
		if err := rows.Scan(
			&page.ID, &page.URL, &page.Title, &page.Text, &page.FetchedAt, &page.CreatedAt,
		); err != nil {
			return nil, err
		}
		pages = append(pages, &page)
	}

	return pages, rows.Err()
}

func (r *PageRepository) Count(ctx context.Context) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("page_cache").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

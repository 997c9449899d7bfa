package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campaign-bot/internal/models"
	"campaign-bot/internal/repository"
	"campaign-bot/pkg/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	contentUserAgent        = "campaign-bot/1.0"
	maxPageTextLength       = 20000
	scheduledRefreshTimeout = 10 * time.Minute
)

// campaignKeywords filters feed items down to coverage of the campaign.
// Matched as substrings against the lowercased item title.
var campaignKeywords = []string{"mussab", "jersey city", "mayor"}

// PageStore is the page cache persistence used by ContentService.
type PageStore interface {
	GetByURL(ctx context.Context, url string) (*models.Page, error)
	Upsert(ctx context.Context, page *models.Page) error
	List(ctx context.Context, limit, offset int) ([]*models.Page, error)
	Count(ctx context.Context) (int, error)
}

// SourceLister supplies the source URLs referenced by the knowledge store.
type SourceLister interface {
	SourceURLs() []string
}

// RefreshStats summarizes a bulk source refresh.
type RefreshStats struct {
	Requested int `json:"requested"`
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// ContentService maintains the page cache: it fetches and extracts text from
// campaign web pages, keeps cached copies inside the freshness window, and
// pulls campaign coverage from configured news feeds on a schedule.
type ContentService struct {
	pages      PageStore
	sources    SourceLister
	config     *config.ContentConfig
	httpClient *http.Client
	feedParser *gofeed.Parser
	cron       *cron.Cron
	logger     *zap.Logger
}

func NewContentService(pages PageStore, sources SourceLister, cfg *config.ContentConfig, logger *zap.Logger) *ContentService {
	return &ContentService{
		pages:      pages,
		sources:    sources,
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		feedParser: gofeed.NewParser(),
		cron:       cron.New(),
		logger:     logger,
	}
}

// GetPageText returns the cached page for a URL, refetching it once the
// freshness window has passed. A failed refetch falls back to the stale copy
// so readers keep getting content while the site is unreachable.
func (s *ContentService) GetPageText(ctx context.Context, pageURL string) (*models.Page, error) {
	cached, err := s.pages.GetByURL(ctx, pageURL)
	if err != nil && !errors.Is(err, repository.ErrPageNotFound) {
		return nil, fmt.Errorf("failed to read page cache: %w", err)
	}

	if cached != nil && time.Since(cached.FetchedAt) < s.config.FreshnessWindow {
		return cached, nil
	}

	page, fetchErr := s.fetchPage(ctx, pageURL)
	if fetchErr != nil {
		if cached != nil {
			s.logger.Warn("Serving stale page after fetch failure",
				zap.String("url", pageURL),
				zap.Time("fetched_at", cached.FetchedAt),
				zap.Error(fetchErr))
			return cached, nil
		}
		return nil, fetchErr
	}

	if cached != nil {
		page.ID = cached.ID
	}

	if err := s.pages.Upsert(ctx, page); err != nil {
		s.logger.Warn("Failed to cache fetched page", zap.String("url", pageURL), zap.Error(err))
	}

	return page, nil
}

// PageExcerpt returns up to maxLen characters of a page's text, cut at a
// sentence boundary.
func (s *ContentService) PageExcerpt(ctx context.Context, pageURL string, maxLen int) (string, error) {
	page, err := s.GetPageText(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return truncateAtSentence(page.Text, maxLen), nil
}

// RefreshSources refetches every given URL and updates the page cache.
// Individual failures are logged and counted, not returned.
func (s *ContentService) RefreshSources(ctx context.Context, urls []string) RefreshStats {
	stats := RefreshStats{Requested: len(urls)}

	for _, pageURL := range urls {
		if ctx.Err() != nil {
			stats.Failed += stats.Requested - stats.Refreshed - stats.Failed
			break
		}

		page, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			s.logger.Warn("Failed to refresh source page", zap.String("url", pageURL), zap.Error(err))
			stats.Failed++
			continue
		}

		if err := s.pages.Upsert(ctx, page); err != nil {
			s.logger.Warn("Failed to store refreshed page", zap.String("url", pageURL), zap.Error(err))
			stats.Failed++
			continue
		}

		stats.Refreshed++
	}

	s.logger.Info("Source refresh completed",
		zap.Int("requested", stats.Requested),
		zap.Int("refreshed", stats.Refreshed),
		zap.Int("failed", stats.Failed))

	return stats
}

// RefreshFeeds pulls the configured news feeds and caches items whose titles
// mention the campaign. Returns the number of items stored.
func (s *ContentService) RefreshFeeds(ctx context.Context) (int, error) {
	if len(s.config.FeedURLs) == 0 {
		return 0, nil
	}

	stored := 0
	for _, feedURL := range s.config.FeedURLs {
		if ctx.Err() != nil {
			return stored, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
		if err != nil {
			s.logger.Warn("Failed to build feed request", zap.String("feed", feedURL), zap.Error(err))
			continue
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.logger.Warn("Failed to fetch feed", zap.String("feed", feedURL), zap.Error(err))
			continue
		}

		feed, err := s.feedParser.Parse(resp.Body)
		resp.Body.Close()
		if err != nil {
			s.logger.Warn("Failed to parse feed", zap.String("feed", feedURL), zap.Error(err))
			continue
		}

		for _, item := range feed.Items {
			if !mentionsCampaign(item.Title) {
				continue
			}

			page := feedItemPage(item)
			if page == nil {
				continue
			}

			if err := s.pages.Upsert(ctx, page); err != nil {
				s.logger.Warn("Failed to cache feed item", zap.String("url", page.URL), zap.Error(err))
				continue
			}
			stored++
		}

		s.logger.Debug("Feed processed",
			zap.String("feed", feedURL),
			zap.String("title", feed.Title),
			zap.Int("items", len(feed.Items)))
	}

	return stored, nil
}

// IsFresh reports whether a fetch time is still inside the freshness window.
func (s *ContentService) IsFresh(fetchedAt time.Time) bool {
	return time.Since(fetchedAt) < s.config.FreshnessWindow
}

// CachedPageCount returns the number of pages in the cache.
func (s *ContentService) CachedPageCount(ctx context.Context) (int, error) {
	return s.pages.Count(ctx)
}

// ListPages returns a slice of the page cache for the admin API.
func (s *ContentService) ListPages(ctx context.Context, limit, offset int) ([]*models.Page, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	pages, err := s.pages.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cached pages: %w", err)
	}

	total, err := s.pages.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count cached pages: %w", err)
	}

	return pages, total, nil
}

// StartScheduler begins periodic content refresh using the configured cron
// schedule. A blank schedule disables it.
func (s *ContentService) StartScheduler() error {
	if s.config.RefreshSchedule == "" {
		s.logger.Info("Content refresh scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.RefreshSchedule, s.runScheduledRefresh); err != nil {
		return fmt.Errorf("failed to schedule content refresh: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Content refresh scheduler started", zap.String("schedule", s.config.RefreshSchedule))
	return nil
}

// Stop halts the refresh scheduler.
func (s *ContentService) Stop() {
	s.cron.Stop()
	s.logger.Info("Content refresh scheduler stopped")
}

func (s *ContentService) runScheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), scheduledRefreshTimeout)
	defer cancel()

	var urls []string
	if s.sources != nil {
		urls = s.sources.SourceURLs()
	}

	stats := s.RefreshSources(ctx, urls)

	stored, err := s.RefreshFeeds(ctx)
	if err != nil {
		s.logger.Error("Scheduled feed refresh failed", zap.Error(err))
	}

	s.logger.Info("Scheduled content refresh completed",
		zap.Int("sources_refreshed", stats.Refreshed),
		zap.Int("sources_failed", stats.Failed),
		zap.Int("feed_items", stored))
}

func (s *ContentService) fetchPage(ctx context.Context, pageURL string) (*models.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build page request: %w", err)
	}
	req.Header.Set("User-Agent", contentUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	text := sanitizeUTF8(collapseWhitespace(doc.Find("body").Text()))
	if len([]rune(text)) > maxPageTextLength {
		text = truncateAtSentence(text, maxPageTextLength)
	}

	return &models.Page{
		ID:        uuid.New(),
		URL:       pageURL,
		Title:     title,
		Text:      text,
		FetchedAt: time.Now(),
	}, nil
}

func feedItemPage(item *gofeed.Item) *models.Page {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return nil
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	text := sanitizeUTF8(collapseWhitespace(stripHTML(body)))

	return &models.Page{
		ID:        uuid.New(),
		URL:       link,
		Title:     strings.TrimSpace(item.Title),
		Text:      text,
		FetchedAt: time.Now(),
	}
}

// stripHTML drops markup from a feed fragment, returning plain text.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	return doc.Text()
}

func mentionsCampaign(title string) bool {
	t := strings.ToLower(title)
	for _, k := range campaignKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

package dto

import (
	"time"

	"campaign-bot/internal/models"
)

type ContentRefreshResponse struct {
	SourcesRequested int `json:"sources_requested"`
	SourcesRefreshed int `json:"sources_refreshed"`
	SourcesFailed    int `json:"sources_failed"`
	FeedItemsStored  int `json:"feed_items_stored"`
}

type PageResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	TextLength int    `json:"text_length"`
	Fresh      bool   `json:"fresh"`
	FetchedAt  string `json:"fetched_at"`
}

type PageListResponse struct {
	Pages []PageResponse `json:"pages"`
	Total int            `json:"total"`
}

func NewPageResponse(page *models.Page, fresh bool) PageResponse {
	return PageResponse{
		ID:         page.ID.String(),
		URL:        page.URL,
		Title:      page.Title,
		TextLength: len([]rune(page.Text)),
		Fresh:      fresh,
		FetchedAt:  page.FetchedAt.Format(time.RFC3339),
	}
}

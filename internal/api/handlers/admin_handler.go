package handlers

import (
	"time"

	"campaign-bot/internal/dto"
	"campaign-bot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	knowledgeService *service.KnowledgeService
	contentService   *service.ContentService
	logger           *zap.Logger
}

func NewAdminHandler(
	knowledgeService *service.KnowledgeService,
	contentService *service.ContentService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		knowledgeService: knowledgeService,
		contentService:   contentService,
		logger:           logger,
	}
}

// ReloadKnowledge godoc
// @Summary Reload the knowledge store
// @Description Rebuild the in-memory knowledge snapshot from the database and swap it in atomically
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.KnowledgeReloadResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/admin/refresh [post]
func (h *AdminHandler) ReloadKnowledge(c *fiber.Ctx) error {
	oldRevision := h.knowledgeService.Stats().Revision

	if err := h.knowledgeService.Load(c.Context()); err != nil {
		h.logger.Error("Knowledge reload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reload knowledge store",
		})
	}

	stats := h.knowledgeService.Stats()
	return c.JSON(dto.KnowledgeReloadResponse{
		Status:      "reloaded",
		OldRevision: oldRevision,
		NewRevision: stats.Revision,
		ItemCount:   stats.ItemCount,
		TopicCount:  stats.TopicCount,
		Languages:   stats.Languages,
		LoadedAt:    stats.LoadedAt.Format(time.RFC3339),
	})
}

// RefreshContent godoc
// @Summary Refresh cached content
// @Description Refetch every knowledge source page and pull the configured news feeds into the page cache
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.ContentRefreshResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/admin/content/refresh [post]
func (h *AdminHandler) RefreshContent(c *fiber.Ctx) error {
	stats := h.contentService.RefreshSources(c.Context(), h.knowledgeService.SourceURLs())

	stored, err := h.contentService.RefreshFeeds(c.Context())
	if err != nil {
		h.logger.Warn("Feed refresh incomplete", zap.Error(err))
	}

	return c.JSON(dto.ContentRefreshResponse{
		SourcesRequested: stats.Requested,
		SourcesRefreshed: stats.Refreshed,
		SourcesFailed:    stats.Failed,
		FeedItemsStored:  stored,
	})
}

// ListPages godoc
// @Summary List cached pages
// @Description List pages held in the content cache with freshness flags
// @Tags admin
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {object} dto.PageListResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/admin/pages [get]
func (h *AdminHandler) ListPages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	pages, total, err := h.contentService.ListPages(c.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list cached pages", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list cached pages",
		})
	}

	resp := dto.PageListResponse{
		Pages: make([]dto.PageResponse, 0, len(pages)),
		Total: total,
	}
	for _, page := range pages {
		resp.Pages = append(resp.Pages, dto.NewPageResponse(page, h.contentService.IsFresh(page.FetchedAt)))
	}

	return c.JSON(resp)
}

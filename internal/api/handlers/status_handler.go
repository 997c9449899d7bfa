package handlers

import (
	"time"

	"campaign-bot/internal/dto"
	"campaign-bot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StatusHandler struct {
	knowledgeService *service.KnowledgeService
	contentService   *service.ContentService
	providerName     string
	logger           *zap.Logger
}

func NewStatusHandler(
	knowledgeService *service.KnowledgeService,
	contentService *service.ContentService,
	providerName string,
	logger *zap.Logger,
) *StatusHandler {
	return &StatusHandler{
		knowledgeService: knowledgeService,
		contentService:   contentService,
		providerName:     providerName,
		logger:           logger,
	}
}

// Health godoc
// @Summary Service health
// @Description Report knowledge store, page cache and generation provider status
// @Tags status
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *StatusHandler) Health(c *fiber.Ctx) error {
	stats := h.knowledgeService.Stats()

	resp := dto.HealthResponse{
		Status:         "ok",
		Revision:       stats.Revision,
		KnowledgeItems: stats.ItemCount,
		Topics:         stats.TopicCount,
		ContentTypes:   stats.ByContentType,
		Languages:      stats.Languages,
		LLMProvider:    h.providerName,
	}

	if stats.Loaded {
		resp.LoadedAt = stats.LoadedAt.Format(time.RFC3339)
	} else {
		resp.Status = "degraded"
	}

	if resp.ContentTypes == nil {
		resp.ContentTypes = map[string]int{}
	}
	if resp.Languages == nil {
		resp.Languages = []string{}
	}

	if h.contentService != nil {
		count, err := h.contentService.CachedPageCount(c.Context())
		if err != nil {
			h.logger.Debug("Failed to count cached pages", zap.Error(err))
		} else {
			resp.CachedPages = count
		}
	}

	return c.JSON(resp)
}

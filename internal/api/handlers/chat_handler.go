package handlers

import (
	"campaign-bot/internal/dto"
	"campaign-bot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat godoc
// @Summary Answer a voter question
// @Description Answer a question about the campaign from the knowledge store, generating a grounded response when no FAQ matches directly
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat request"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := dto.Validate(&req); err != nil {
		h.logger.Debug("Chat request rejected", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required and must be at most 2000 characters",
		})
	}

	reply := h.chatService.Process(c.Context(), req.Message, req.Language)

	return c.JSON(dto.NewChatResponse(reply))
}

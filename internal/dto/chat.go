package dto

import "campaign-bot/internal/models"

type ChatRequest struct {
	Message  string `json:"message" validate:"required,max=2000"`
	Language string `json:"language" validate:"omitempty,oneof=en es ar fr"`
}

type ChatResponse struct {
	Response        string          `json:"response"`
	ConfidenceScore float64         `json:"confidence_score"`
	Sources         []models.Source `json:"sources"`
	TopicsCovered   []string        `json:"topics_covered"`
	Language        string          `json:"language"`
	ReplyType       string          `json:"reply_type"`
}

// NewChatResponse maps a reply onto the wire format. Slices are never null
// in the JSON output.
func NewChatResponse(reply models.Reply) ChatResponse {
	resp := ChatResponse{
		Response:        reply.Text,
		ConfidenceScore: reply.Confidence,
		Sources:         reply.Sources,
		TopicsCovered:   reply.TopicsCovered,
		Language:        reply.Language,
		ReplyType:       string(reply.Type),
	}
	if resp.Sources == nil {
		resp.Sources = []models.Source{}
	}
	if resp.TopicsCovered == nil {
		resp.TopicsCovered = []string{}
	}
	return resp
}

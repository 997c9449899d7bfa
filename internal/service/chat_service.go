package service

import (
	"context"

	"campaign-bot/internal/models"

	"go.uber.org/zap"
)

// ChatService runs one question through the full answer pipeline: normalize
// the message, rank it against the current knowledge snapshot, assemble the
// reply.
type ChatService struct {
	knowledge *KnowledgeService
	retrieval *RetrievalService
	responder *ResponderService
	logger    *zap.Logger
}

func NewChatService(
	knowledge *KnowledgeService,
	retrieval *RetrievalService,
	responder *ResponderService,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		knowledge: knowledge,
		retrieval: retrieval,
		responder: responder,
		logger:    logger,
	}
}

// Process answers one message. It never returns an error: an unloaded store,
// an empty query and a failed generation each map to a defined fallback
// reply.
func (s *ChatService) Process(ctx context.Context, message, languageHint string) models.Reply {
	qc := Normalize(message, languageHint)

	snap := s.knowledge.Snapshot()
	if snap == nil {
		s.logger.Warn("Chat request served before knowledge store loaded")
		return s.responder.Assemble(ctx, qc, nil)
	}

	ranked := s.retrieval.Rank(qc, snap)
	reply := s.responder.Assemble(ctx, qc, ranked)

	s.logger.Info("Chat reply assembled",
		zap.String("language", reply.Language),
		zap.String("reply_type", string(reply.Type)),
		zap.Float64("confidence", reply.Confidence),
		zap.Int("matches", len(ranked)),
	)

	return reply
}

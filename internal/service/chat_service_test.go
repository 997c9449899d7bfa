package service

import (
	"context"
	"testing"

	"campaign-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCorpus struct {
	items     []models.KnowledgeItem
	topics    []models.TopicConfig
	itemErr   error
	topicErr  error
	itemCalls int
}

func (c *stubCorpus) ListItems(ctx context.Context) ([]models.KnowledgeItem, error) {
	c.itemCalls++
	if c.itemErr != nil {
		return nil, c.itemErr
	}
	return c.items, nil
}

func (c *stubCorpus) ListTopics(ctx context.Context) ([]models.TopicConfig, error) {
	if c.topicErr != nil {
		return nil, c.topicErr
	}
	return c.topics, nil
}

func newTestChatService(corpus CorpusSource, gen Generator) (*ChatService, *KnowledgeService) {
	logger := zap.NewNop()
	knowledge := NewKnowledgeService(corpus, logger)
	retrieval := NewRetrievalService(testRetrievalConfig(), logger)
	responder := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), logger)
	return NewChatService(knowledge, retrieval, responder, logger), knowledge
}

func TestProcessBeforeLoadReturnsNoInformation(t *testing.T) {
	chat, _ := newTestChatService(&stubCorpus{}, nil)

	reply := chat.Process(context.Background(), "how do I register to vote", "")

	assert.Equal(t, models.ReplyTypeNoInformation, reply.Type)
	assert.Equal(t, LangEnglish, reply.Language)
}

func TestProcessAnswersHousingQuestionVerbatim(t *testing.T) {
	corpus := &stubCorpus{items: campaignFixtureItems(), topics: campaignFixtureTopics()}
	chat, knowledge := newTestChatService(corpus, nil)
	require.NoError(t, knowledge.Load(context.Background()))

	reply := chat.Process(context.Background(), "I can't afford rent in Jersey City", "")

	assert.Equal(t, models.ReplyTypeFAQ, reply.Type)
	assert.Equal(t, housingFAQText, reply.Text)
	assert.InDelta(t, 0.64, reply.Confidence, 1e-9)
	assert.Equal(t, LangEnglish, reply.Language)
	require.Len(t, reply.Sources, 1)
	assert.Equal(t, []string{"housing"}, reply.TopicsCovered)
}

func TestProcessUnknownTopicReturnsNoInformation(t *testing.T) {
	corpus := &stubCorpus{items: campaignFixtureItems(), topics: campaignFixtureTopics()}
	chat, knowledge := newTestChatService(corpus, nil)
	require.NoError(t, knowledge.Load(context.Background()))

	reply := chat.Process(context.Background(), "quantum blockchain synergy", "")

	assert.Equal(t, models.ReplyTypeNoInformation, reply.Type)
	assert.Equal(t, noInformationText(LangEnglish), reply.Text)
}

func TestProcessLanguageHintLocalizesFallback(t *testing.T) {
	corpus := &stubCorpus{items: campaignFixtureItems(), topics: campaignFixtureTopics()}
	chat, knowledge := newTestChatService(corpus, nil)
	require.NoError(t, knowledge.Load(context.Background()))

	reply := chat.Process(context.Background(), "quantum blockchain synergy", "es")

	assert.Equal(t, models.ReplyTypeNoInformation, reply.Type)
	assert.Equal(t, LangSpanish, reply.Language)
	assert.Equal(t, noInformationText(LangSpanish), reply.Text)
}

func TestProcessRoutesNonFAQMatchesThroughGenerator(t *testing.T) {
	corpus := &stubCorpus{
		items: []models.KnowledgeItem{
			{
				ID:             "policy_water",
				ContentType:    models.ContentTypePolicy,
				Text:           "Replace every lead water line in the city within eight years.",
				Topic:          "utilities",
				Language:       LangEnglish,
				Keywords:       []string{"water", "lead", "pipes"},
				Credibility:    models.CredibilityPrimary,
				ConfidenceBase: 1.0,
			},
		},
	}
	gen := &stubGenerator{reply: "The plan replaces every lead water line within eight years."}
	chat, knowledge := newTestChatService(corpus, gen)
	require.NoError(t, knowledge.Load(context.Background()))

	reply := chat.Process(context.Background(), "what about lead in the water", "")

	assert.Equal(t, models.ReplyTypeGenerated, reply.Type)
	assert.Equal(t, gen.reply, reply.Text)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "what about lead in the water", gen.lastQuery)
}

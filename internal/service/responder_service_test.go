package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campaign-bot/internal/models"
	"campaign-bot/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct {
	reply       string
	err         error
	calls       int
	lastContext []string
	lastQuery   string
	lastLang    string
}

func (g *stubGenerator) Complete(ctx context.Context, contextItems []string, query, language string) (string, error) {
	g.calls++
	g.lastContext = contextItems
	g.lastQuery = query
	g.lastLang = language
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *stubGenerator) Name() string { return "stub" }
func (g *stubGenerator) Close() error { return nil }

type stubPageProvider struct {
	excerpt string
	err     error
	lastURL string
}

func (p *stubPageProvider) PageExcerpt(ctx context.Context, url string, maxLen int) (string, error) {
	p.lastURL = url
	if p.err != nil {
		return "", p.err
	}
	return p.excerpt, nil
}

func testLLMConfig() *config.LLMConfig {
	return &config.LLMConfig{
		Provider:    "stub",
		MaxTokens:   600,
		Temperature: 0.3,
		Timeout:     2 * time.Second,
	}
}

func scoredFAQ(score float64) models.ScoredItem {
	return models.ScoredItem{
		Item: models.KnowledgeItem{
			ID:             "faq_housing",
			ContentType:    models.ContentTypeFAQ,
			Text:           housingFAQText,
			Topic:          "housing",
			Language:       "en",
			SourceURL:      "https://www.ali2025.com/",
			SourceTitle:    "Ali 2025 Campaign FAQ",
			Credibility:    models.CredibilityPrimary,
			ConfidenceBase: 1.0,
		},
		Score: score,
	}
}

func scoredPolicy(score float64) models.ScoredItem {
	return models.ScoredItem{
		Item: models.KnowledgeItem{
			ID:             "policy_housing",
			ContentType:    models.ContentTypePolicy,
			Text:           housingPolicyText,
			Topic:          "housing",
			Language:       "en",
			SourceURL:      "https://www.ali2025.com/policies",
			SourceTitle:    "Ali 2025 Policy Platform",
			Credibility:    models.CredibilityPrimary,
			ConfidenceBase: 1.0,
		},
		Score: score,
	}
}

func TestAssembleNoMatchesGivesLocalizedFallback(t *testing.T) {
	svc := NewResponderService(nil, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	for _, lang := range []string{LangEnglish, LangSpanish, LangArabic, LangFrench} {
		reply := svc.Assemble(context.Background(), models.QueryContext{Language: lang}, nil)

		assert.Equal(t, models.ReplyTypeNoInformation, reply.Type)
		assert.Equal(t, noInformationText(lang), reply.Text)
		assert.Equal(t, lang, reply.Language)
		assert.Zero(t, reply.Confidence)
		require.NotNil(t, reply.Sources)
		assert.Empty(t, reply.Sources)
	}
}

func TestAssembleHighConfidenceFAQIsVerbatim(t *testing.T) {
	gen := &stubGenerator{reply: "should not be used"}
	svc := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "rent question", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, []models.ScoredItem{scoredFAQ(0.64), scoredPolicy(0.34)})

	assert.Equal(t, models.ReplyTypeFAQ, reply.Type)
	assert.Equal(t, housingFAQText, reply.Text, "high-confidence FAQ answers are served verbatim")
	assert.InDelta(t, 0.64, reply.Confidence, 1e-9)
	require.Len(t, reply.Sources, 1)
	assert.Equal(t, "https://www.ali2025.com/", reply.Sources[0].URL)
	assert.Equal(t, []string{"housing"}, reply.TopicsCovered)
	assert.Zero(t, gen.calls, "the generator must not run for verbatim FAQ answers")
}

func TestAssembleHighScoreNonFAQGoesThroughGenerator(t *testing.T) {
	gen := &stubGenerator{reply: "A generated answer about housing."}
	svc := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "what is the housing plan", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, []models.ScoredItem{scoredPolicy(0.9)})

	assert.Equal(t, models.ReplyTypeGenerated, reply.Type)
	assert.Equal(t, "A generated answer about housing.", reply.Text)
	assert.Equal(t, 1, gen.calls, "a policy item never takes the verbatim path, whatever its score")
	assert.Equal(t, "what is the housing plan", gen.lastQuery)
	assert.Equal(t, LangEnglish, gen.lastLang)
}

func TestAssembleLowConfidenceFAQGoesThroughGenerator(t *testing.T) {
	gen := &stubGenerator{reply: "Paraphrased answer."}
	svc := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, []models.ScoredItem{scoredFAQ(0.5)})

	assert.Equal(t, models.ReplyTypeGenerated, reply.Type)
	assert.Equal(t, 1, gen.calls)
	assert.NotEqual(t, housingFAQText, reply.Text)
}

func TestAssembleGeneratedConfidenceAndSources(t *testing.T) {
	gen := &stubGenerator{reply: "Grounded answer."}
	svc := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	sameSource := scoredFAQ(0.5)
	ranked := []models.ScoredItem{sameSource, scoredPolicy(0.3), scoredFAQ(0.2)}

	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, ranked)

	// mean of (0.5, 0.3, 0.2) damped by the fallback factor
	assert.InDelta(t, (0.5+0.3+0.2)/3*0.85, reply.Confidence, 1e-9)
	require.Len(t, reply.Sources, 2, "duplicate source URLs collapse to one entry")
	assert.Equal(t, []string{"housing"}, reply.TopicsCovered)
}

func TestAssembleDegradedWhenGeneratorMissing(t *testing.T) {
	svc := NewResponderService(nil, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	top := scoredPolicy(0.4)
	top.Item.ConfidenceBase = 0.9

	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, []models.ScoredItem{top})

	assert.Equal(t, models.ReplyTypeDegraded, reply.Type)
	assert.Equal(t, housingPolicyText, reply.Text, "degraded replies quote the best match directly")
	assert.InDelta(t, 0.4*0.9, reply.Confidence, 1e-9)
	require.Len(t, reply.Sources, 1)
}

func TestAssembleDegradedOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider unavailable")}
	svc := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, []models.ScoredItem{scoredPolicy(0.4)})

	assert.Equal(t, models.ReplyTypeDegraded, reply.Type)
	assert.Equal(t, housingPolicyText, reply.Text)
}

func TestAssembleDegradedOnEmptyGeneration(t *testing.T) {
	gen := &stubGenerator{reply: "   "}
	svc := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, []models.ScoredItem{scoredPolicy(0.4)})

	assert.Equal(t, models.ReplyTypeDegraded, reply.Type)
}

func TestAssembleLimitsContextSize(t *testing.T) {
	cfg := testRetrievalConfig()
	cfg.ContextSize = 2

	gen := &stubGenerator{reply: "answer"}
	svc := NewResponderService(gen, nil, cfg, testLLMConfig(), zap.NewNop())

	ranked := []models.ScoredItem{scoredPolicy(0.5), scoredPolicy(0.4), scoredPolicy(0.3), scoredPolicy(0.2)}
	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	svc.Assemble(context.Background(), qc, ranked)

	assert.Len(t, gen.lastContext, 2)
}

func TestAssembleAnnotatesNewsDates(t *testing.T) {
	published := time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC)
	news := models.ScoredItem{
		Item: models.KnowledgeItem{
			ID:             "news_budget",
			ContentType:    models.ContentTypeNewsArticle,
			Text:           "Ali called the budget plan unacceptable.",
			Topic:          "education",
			Language:       "en",
			SourceURL:      "https://hudsoncountyview.com/article",
			SourceTitle:    "Ali tees off on the BOE budget",
			SourceAuthor:   "John Heinis",
			PublishedAt:    &published,
			Credibility:    models.CredibilityVerified,
			ConfidenceBase: 0.9,
		},
		Score: 0.5,
	}

	gen := &stubGenerator{reply: "answer"}
	svc := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "school budget", Language: LangEnglish}
	svc.Assemble(context.Background(), qc, []models.ScoredItem{news})

	require.Len(t, gen.lastContext, 1)
	assert.Contains(t, gen.lastContext[0], "Published: 2025-03-24",
		"dated coverage should carry its publication date into the generation context")
}

func TestAssembleAppendsFreshPageExcerpt(t *testing.T) {
	gen := &stubGenerator{reply: "answer"}
	pages := &stubPageProvider{excerpt: "Fresh page content about the housing plan."}
	svc := NewResponderService(gen, pages, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	svc.Assemble(context.Background(), qc, []models.ScoredItem{scoredPolicy(0.5)})

	assert.Equal(t, "https://www.ali2025.com/policies", pages.lastURL)
	require.Len(t, gen.lastContext, 2)
	assert.Contains(t, gen.lastContext[1], "CURRENT PAGE CONTENT")
	assert.Contains(t, gen.lastContext[1], "Fresh page content")
}

func TestAssembleSkipsPageExcerptOnError(t *testing.T) {
	gen := &stubGenerator{reply: "answer"}
	pages := &stubPageProvider{err: errors.New("cache miss")}
	svc := NewResponderService(gen, pages, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, []models.ScoredItem{scoredPolicy(0.5)})

	assert.Equal(t, models.ReplyTypeGenerated, reply.Type)
	assert.Len(t, gen.lastContext, 1, "an unavailable page cache must not block generation")
}

func TestAssembleTruncatesLongGeneration(t *testing.T) {
	gen := &stubGenerator{reply: strings.Repeat("Long sentence here. ", 200)}
	svc := NewResponderService(gen, nil, testRetrievalConfig(), testLLMConfig(), zap.NewNop())

	qc := models.QueryContext{RawText: "housing", Language: LangEnglish}
	reply := svc.Assemble(context.Background(), qc, []models.ScoredItem{scoredPolicy(0.5)})

	assert.LessOrEqual(t, len([]rune(reply.Text)), maxReplyLength)
	assert.True(t, strings.HasSuffix(reply.Text, "."), "truncation should end on a sentence boundary")
}

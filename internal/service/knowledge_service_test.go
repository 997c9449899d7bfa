package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"campaign-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validKnowledgeItem(id string) models.KnowledgeItem {
	return models.KnowledgeItem{
		ID:             id,
		ContentType:    models.ContentTypeFAQ,
		Text:           "Some answer text.",
		Topic:          "housing",
		Language:       "en",
		Credibility:    models.CredibilityPrimary,
		ConfidenceBase: 1.0,
	}
}

func TestLoadValidatesItems(t *testing.T) {
	noID := validKnowledgeItem("")
	noText := validKnowledgeItem("no_text")
	noText.Text = ""
	duplicate := validKnowledgeItem("faq_ok")
	duplicate.Text = "A later duplicate that must lose."
	badType := validKnowledgeItem("bad_type")
	badType.ContentType = "tweet"
	badCred := validKnowledgeItem("bad_cred")
	badCred.Credibility = "gossip"
	defaulted := validKnowledgeItem("defaulted")
	defaulted.Language = ""
	defaulted.ConfidenceBase = 1.5
	clamped := validKnowledgeItem("clamped")
	clamped.ConfidenceBase = -2

	corpus := &stubCorpus{items: []models.KnowledgeItem{
		validKnowledgeItem("faq_ok"), noID, noText, duplicate, badType, badCred, defaulted, clamped,
	}}
	svc := NewKnowledgeService(corpus, zap.NewNop())

	require.NoError(t, svc.Load(context.Background()))

	snap := svc.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 3, snap.Len(), "only faq_ok, defaulted and clamped survive validation")

	byID := make(map[string]models.KnowledgeItem, snap.Len())
	for _, item := range snap.items {
		byID[item.ID] = item
	}

	assert.Equal(t, "Some answer text.", byID["faq_ok"].Text, "the first occurrence of a duplicate id wins")
	assert.Equal(t, LangEnglish, byID["defaulted"].Language, "missing language defaults to English")
	assert.InDelta(t, 1.0, byID["defaulted"].ConfidenceBase, 1e-9)
	assert.InDelta(t, 0.0, byID["clamped"].ConfidenceBase, 1e-9)
}

func TestLoadBumpsRevision(t *testing.T) {
	corpus := &stubCorpus{items: []models.KnowledgeItem{validKnowledgeItem("faq_ok")}}
	svc := NewKnowledgeService(corpus, zap.NewNop())

	require.NoError(t, svc.Load(context.Background()))
	assert.Equal(t, uint64(1), svc.Snapshot().Revision())

	require.NoError(t, svc.Load(context.Background()))
	assert.Equal(t, uint64(2), svc.Snapshot().Revision())
	assert.Equal(t, 2, corpus.itemCalls)
}

func TestLoadFailureKeepsServingOldSnapshot(t *testing.T) {
	corpus := &stubCorpus{items: []models.KnowledgeItem{validKnowledgeItem("faq_ok")}}
	svc := NewKnowledgeService(corpus, zap.NewNop())
	require.NoError(t, svc.Load(context.Background()))

	corpus.itemErr = errors.New("connection refused")
	err := svc.Load(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load knowledge items")
	snap := svc.Snapshot()
	require.NotNil(t, snap, "a failed reload must not drop the serving snapshot")
	assert.Equal(t, uint64(1), snap.Revision())
	assert.Equal(t, 1, snap.Len())
}

func TestLoadTopicFailureKeepsServingOldSnapshot(t *testing.T) {
	corpus := &stubCorpus{items: []models.KnowledgeItem{validKnowledgeItem("faq_ok")}}
	svc := NewKnowledgeService(corpus, zap.NewNop())
	require.NoError(t, svc.Load(context.Background()))

	corpus.topicErr = errors.New("connection refused")
	err := svc.Load(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic configuration")
	assert.Equal(t, uint64(1), svc.Snapshot().Revision())
}

func TestReloadKeepsReadersConsistent(t *testing.T) {
	corpusA := []models.KnowledgeItem{validKnowledgeItem("generation_a")}
	corpusB := []models.KnowledgeItem{
		validKnowledgeItem("generation_b_1"),
		validKnowledgeItem("generation_b_2"),
	}

	corpus := &stubCorpus{items: corpusA}
	svc := NewKnowledgeService(corpus, zap.NewNop())
	require.NoError(t, svc.Load(context.Background()))

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				snap := svc.Snapshot()
				if snap == nil {
					t.Error("serving snapshot disappeared during reload")
					return
				}

				// Every observed snapshot must be wholly one corpus
				// generation, never a mix.
				want := "generation_a"
				if len(snap.items) == 2 {
					want = "generation_b"
				} else if len(snap.items) != 1 {
					t.Errorf("observed snapshot with %d items", len(snap.items))
					return
				}
				for _, item := range snap.items {
					if !strings.HasPrefix(item.ID, want) {
						t.Errorf("snapshot mixes generations: %d items but id %s", len(snap.items), item.ID)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			corpus.items = corpusB
		} else {
			corpus.items = corpusA
		}
		require.NoError(t, svc.Load(context.Background()))
	}

	close(done)
	wg.Wait()
}

func TestStatsBeforeLoad(t *testing.T) {
	svc := NewKnowledgeService(&stubCorpus{}, zap.NewNop())

	assert.Nil(t, svc.Snapshot())
	assert.Nil(t, svc.SourceURLs())

	stats := svc.Stats()
	assert.False(t, stats.Loaded)
	assert.Zero(t, stats.ItemCount)
}

func TestStatsDescribeLoadedCorpus(t *testing.T) {
	first := validKnowledgeItem("faq_one")
	first.SourceURL = "https://www.ali2025.com/"
	second := validKnowledgeItem("faq_two")
	second.SourceURL = "https://www.ali2025.com/"
	policy := validKnowledgeItem("policy_one")
	policy.ContentType = models.ContentTypePolicy
	policy.Language = "es"
	policy.SourceURL = "https://hudsoncountyview.com/article"

	corpus := &stubCorpus{
		items:  []models.KnowledgeItem{first, second, policy},
		topics: campaignFixtureTopics(),
	}
	svc := NewKnowledgeService(corpus, zap.NewNop())
	require.NoError(t, svc.Load(context.Background()))

	stats := svc.Stats()
	assert.True(t, stats.Loaded)
	assert.Equal(t, 3, stats.ItemCount)
	assert.Equal(t, 2, stats.TopicCount)
	assert.Equal(t, map[string]int{"faq": 2, "policy": 1}, stats.ByContentType)
	assert.Equal(t, []string{"en", "es"}, stats.Languages)

	assert.Equal(t, []string{
		"https://hudsoncountyview.com/article",
		"https://www.ali2025.com/",
	}, svc.SourceURLs(), "source URLs come back distinct and sorted")
}

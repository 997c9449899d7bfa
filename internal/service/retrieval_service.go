package service

import (
	"sort"
	"strings"

	"campaign-bot/internal/models"
	"campaign-bot/pkg/config"

	"go.uber.org/zap"
)

// RetrievalService ranks knowledge items against a query by combining four
// weighted signal stages: exact keyword overlap, full-text containment,
// topic hierarchy and cross-language fallback. Items scoring zero overall
// are dropped from the result.
type RetrievalService struct {
	config *config.RetrievalConfig
	logger *zap.Logger
}

func NewRetrievalService(cfg *config.RetrievalConfig, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		config: cfg,
		logger: logger,
	}
}

// Rank scores every item of the snapshot against the query and returns the
// top matches ordered by descending combined score. Ties break by source
// credibility, then by item id, so equal inputs always yield equal output.
func (s *RetrievalService) Rank(qc models.QueryContext, snap *Snapshot) []models.ScoredItem {
	if snap == nil || snap.Len() == 0 || len(qc.Tokens) == 0 {
		return nil
	}

	tokenSet := make(map[string]struct{}, len(qc.Tokens))
	for _, token := range qc.Tokens {
		tokenSet[token] = struct{}{}
	}

	var scored []models.ScoredItem
	for i := range snap.items {
		item := &snap.items[i]

		score := s.config.KeywordWeight*keywordScore(tokenSet, snap.keywordSets[i]) +
			s.config.FullTextWeight*fullTextScore(tokenSet, snap.searchText[i]) +
			s.config.TopicWeight*topicScore(tokenSet, item, snap) +
			s.config.LanguageWeight*languageScore(qc, tokenSet, item, snap, snap.keywordSets[i])

		if score <= 0 {
			continue
		}
		scored = append(scored, models.ScoredItem{Item: *item, Score: score})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		ra, rb := scored[a].Item.Credibility.Rank(), scored[b].Item.Credibility.Rank()
		if ra != rb {
			return ra < rb
		}
		return scored[a].Item.ID < scored[b].Item.ID
	})

	if s.config.TopN > 0 && len(scored) > s.config.TopN {
		scored = scored[:s.config.TopN]
	}

	s.logger.Debug("Ranked knowledge items",
		zap.String("language", qc.Language),
		zap.Int("tokens", len(qc.Tokens)),
		zap.Int("matches", len(scored)),
	)

	return scored
}

// keywordScore is the fraction of an item's keywords hit by query tokens,
// capped at 1.0. An item without keywords cannot score on this stage.
func keywordScore(tokens, keywords map[string]struct{}) float64 {
	if len(keywords) == 0 {
		return 0
	}

	matched := 0
	for token := range tokens {
		if _, ok := keywords[token]; ok {
			matched++
		}
	}

	score := float64(matched) / float64(len(keywords))
	if score > 1 {
		score = 1
	}
	return score
}

// fullTextScore is the fraction of query tokens appearing as substrings in
// the item's text, topic or subtopic.
func fullTextScore(tokens map[string]struct{}, searchText string) float64 {
	if len(tokens) == 0 {
		return 0
	}

	matched := 0
	for token := range tokens {
		if strings.Contains(searchText, token) {
			matched++
		}
	}

	return float64(matched) / float64(len(tokens))
}

// topicScore matches query tokens against the item's place in the topic
// hierarchy: an exact topic or subtopic hit scores full, a configured
// synonym of the topic scores half.
func topicScore(tokens map[string]struct{}, item *models.KnowledgeItem, snap *Snapshot) float64 {
	if _, ok := tokens[item.Topic]; ok {
		return 1.0
	}
	if item.Subtopic != "" {
		if _, ok := tokens[item.Subtopic]; ok {
			return 1.0
		}
	}

	synonyms := snap.SynonymsOf(item.Topic)
	for token := range tokens {
		if _, ok := synonyms[token]; ok {
			return 0.5
		}
	}

	return 0
}

// languageScore is the cross-language fallback stage. It stays zero when the
// query and item languages match, and also when the store holds an item of
// the query's language for the same topic. Otherwise the query tokens are
// mapped through the topic's translation table and the translated terms are
// scored against the item's keywords like the exact keyword stage.
func languageScore(qc models.QueryContext, tokens map[string]struct{}, item *models.KnowledgeItem, snap *Snapshot, keywords map[string]struct{}) float64 {
	if item.Language == qc.Language {
		return 0
	}
	if snap.HasLanguage(item.Topic, qc.Language) {
		return 0
	}
	if len(keywords) == 0 {
		return 0
	}

	translations := snap.Translations(item.Topic)
	if len(translations) == 0 {
		return 0
	}

	if !containsAnyTerm(qc, tokens, translations[qc.Language]) {
		return 0
	}

	matched := 0
	for _, term := range translations[item.Language] {
		if _, ok := keywords[term]; ok {
			matched++
		}
	}

	score := float64(matched) / float64(len(keywords))
	if score > 1 {
		score = 1
	}
	return score
}

func containsAnyTerm(qc models.QueryContext, tokens map[string]struct{}, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(term, " ") {
			if strings.Contains(qc.Normalized, term) {
				return true
			}
			continue
		}
		if _, ok := tokens[term]; ok {
			return true
		}
	}
	return false
}

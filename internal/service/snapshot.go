package service

import (
	"sort"
	"strings"
	"time"

	"campaign-bot/internal/models"
)

// Snapshot is one immutable view of the knowledge store. Matching always runs
// against a single snapshot, so a concurrent reload never changes results
// mid-request.
type Snapshot struct {
	items    []models.KnowledgeItem
	topics   map[string]models.TopicConfig
	revision uint64
	loadedAt time.Time

	searchText    []string              // per item: lowercased text, topic and subtopic
	keywordSets   []map[string]struct{} // per item: lowercased keywords
	synonymSets   map[string]map[string]struct{}
	topicLangs    map[string]map[string]bool
	byContentType map[string]int
}

func NewSnapshot(items []models.KnowledgeItem, topics []models.TopicConfig) *Snapshot {
	snap := &Snapshot{
		items:         make([]models.KnowledgeItem, len(items)),
		topics:        make(map[string]models.TopicConfig, len(topics)),
		loadedAt:      time.Now(),
		searchText:    make([]string, len(items)),
		keywordSets:   make([]map[string]struct{}, len(items)),
		synonymSets:   make(map[string]map[string]struct{}, len(topics)),
		topicLangs:    make(map[string]map[string]bool),
		byContentType: make(map[string]int),
	}

	copy(snap.items, items)

	for i := range snap.items {
		item := &snap.items[i]
		item.Topic = strings.ToLower(item.Topic)
		item.Subtopic = strings.ToLower(item.Subtopic)
		item.Language = strings.ToLower(item.Language)

		keywords := make(map[string]struct{}, len(item.Keywords))
		for _, kw := range item.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords[kw] = struct{}{}
			}
		}
		snap.keywordSets[i] = keywords

		snap.searchText[i] = strings.ToLower(item.Text) + " " + item.Topic + " " + item.Subtopic

		langs, ok := snap.topicLangs[item.Topic]
		if !ok {
			langs = make(map[string]bool)
			snap.topicLangs[item.Topic] = langs
		}
		langs[item.Language] = true

		snap.byContentType[string(item.ContentType)]++
	}

	for _, tc := range topics {
		topic := strings.ToLower(tc.Topic)

		synonyms := make(map[string]struct{}, len(tc.Synonyms))
		for _, syn := range tc.Synonyms {
			if syn = strings.ToLower(strings.TrimSpace(syn)); syn != "" {
				synonyms[syn] = struct{}{}
			}
		}
		snap.synonymSets[topic] = synonyms

		translations := make(map[string][]string, len(tc.Translations))
		for lang, terms := range tc.Translations {
			lowered := make([]string, 0, len(terms))
			for _, term := range terms {
				if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
					lowered = append(lowered, term)
				}
			}
			translations[strings.ToLower(lang)] = lowered
		}

		tc.Topic = topic
		tc.Translations = translations
		snap.topics[topic] = tc
	}

	return snap
}

func (s *Snapshot) Len() int {
	return len(s.items)
}

func (s *Snapshot) TopicCount() int {
	return len(s.topics)
}

func (s *Snapshot) Revision() uint64 {
	return s.revision
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// CountByContentType returns item totals keyed by content type.
func (s *Snapshot) CountByContentType() map[string]int {
	out := make(map[string]int, len(s.byContentType))
	for k, v := range s.byContentType {
		out[k] = v
	}
	return out
}

// HasLanguage reports whether the store holds an item for the topic in the
// given language.
func (s *Snapshot) HasLanguage(topic, lang string) bool {
	return s.topicLangs[strings.ToLower(topic)][strings.ToLower(lang)]
}

// Translations returns the per-language keyword lists configured for a topic,
// or nil when the topic carries no translation table.
func (s *Snapshot) Translations(topic string) map[string][]string {
	tc, ok := s.topics[strings.ToLower(topic)]
	if !ok {
		return nil
	}
	return tc.Translations
}

// SynonymsOf returns the synonym set configured for a topic.
func (s *Snapshot) SynonymsOf(topic string) map[string]struct{} {
	return s.synonymSets[strings.ToLower(topic)]
}

// Languages lists the distinct item languages in the snapshot, sorted.
func (s *Snapshot) Languages() []string {
	seen := make(map[string]bool)
	for _, item := range s.items {
		seen[item.Language] = true
	}

	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// SourceURLs lists the distinct non-empty source URLs of the snapshot,
// sorted for stable refresh ordering.
func (s *Snapshot) SourceURLs() []string {
	seen := make(map[string]bool)
	for _, item := range s.items {
		if item.SourceURL != "" {
			seen[item.SourceURL] = true
		}
	}

	urls := make([]string, 0, len(seen))
	for url := range seen {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

package models

// QueryContext carries one inbound question through the matching pipeline.
// It lives for a single request and is never persisted.
type QueryContext struct {
	RawText    string
	Normalized string
	Tokens     []string
	Language   string
}

// ScoredItem pairs a knowledge item with its combined match score.
type ScoredItem struct {
	Item  KnowledgeItem
	Score float64
}

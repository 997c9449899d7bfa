package dto

type HealthResponse struct {
	Status         string         `json:"status"`
	Revision       uint64         `json:"revision"`
	KnowledgeItems int            `json:"knowledge_items"`
	Topics         int            `json:"topics"`
	ContentTypes   map[string]int `json:"content_types"`
	Languages      []string       `json:"languages"`
	CachedPages    int            `json:"cached_pages"`
	LLMProvider    string         `json:"llm_provider"`
	LoadedAt       string         `json:"loaded_at,omitempty"`
}

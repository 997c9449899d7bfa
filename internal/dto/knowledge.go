package dto

type KnowledgeReloadResponse struct {
	Status      string   `json:"status"`
	OldRevision uint64   `json:"old_revision"`
	NewRevision uint64   `json:"new_revision"`
	ItemCount   int      `json:"item_count"`
	TopicCount  int      `json:"topic_count"`
	Languages   []string `json:"languages"`
	LoadedAt    string   `json:"loaded_at"`
}

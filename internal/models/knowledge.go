package models

import "time"

type ContentType string

const (
	ContentTypeFAQ         ContentType = "faq"
	ContentTypePolicy      ContentType = "policy"
	ContentTypeNewsArticle ContentType = "news_article"
	ContentTypeBiography   ContentType = "biography"
	ContentTypeSpeech      ContentType = "speech"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeFAQ, ContentTypePolicy, ContentTypeNewsArticle, ContentTypeBiography, ContentTypeSpeech:
		return true
	}
	return false
}

type Credibility string

const (
	CredibilityPrimary    Credibility = "primary"
	CredibilityVerified   Credibility = "verified"
	CredibilitySecondary  Credibility = "secondary"
	CredibilityUnverified Credibility = "unverified"
)

// Rank orders tiers for tie-breaking, lower is more trusted.
func (c Credibility) Rank() int {
	switch c {
	case CredibilityPrimary:
		return 0
	case CredibilityVerified:
		return 1
	case CredibilitySecondary:
		return 2
	default:
		return 3
	}
}

func (c Credibility) Valid() bool {
	switch c {
	case CredibilityPrimary, CredibilityVerified, CredibilitySecondary, CredibilityUnverified:
		return true
	}
	return false
}

type KnowledgeItem struct {
	ID             string      `db:"id"`
	ContentType    ContentType `db:"content_type"`
	Text           string      `db:"content"`
	Topic          string      `db:"topic"`
	Subtopic       string      `db:"subtopic"` // optional, empty for top-level items
	Keywords       []string    `db:"keywords"`
	Language       string      `db:"language"`
	SourceURL      string      `db:"source_url"`
	SourceTitle    string      `db:"source_title"`
	SourceAuthor   string      `db:"source_author"` // news byline, empty for campaign material
	PublishedAt    *time.Time  `db:"published_at"`
	Credibility    Credibility `db:"credibility"`
	ConfidenceBase float64     `db:"confidence_base"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

// Source is the attribution attached to a reply.
type Source struct {
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Credibility Credibility `json:"credibility"`
}

// TopicConfig describes one topic of the hierarchy: its subtopics,
// the synonyms that map free-form query tokens onto it, and the
// per-language keyword translations used for cross-language matching.
type TopicConfig struct {
	Topic        string              `db:"topic"`
	Subtopics    []string            `db:"subtopics"`
	Synonyms     []string            `db:"synonyms"`
	Translations map[string][]string `db:"-"`
}

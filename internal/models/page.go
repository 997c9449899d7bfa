package models

import (
	"time"

	"github.com/google/uuid"
)

// Page is one cached remote document kept as background evidence
// for answer generation.
type Page struct {
	ID        uuid.UUID `db:"id"`
	URL       string    `db:"url"`
	Title     string    `db:"title"`
	Text      string    `db:"text_content"`
	FetchedAt time.Time `db:"fetched_at"`
	CreatedAt time.Time `db:"created_at"`
}

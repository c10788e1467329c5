package model

import (
	"time"

	"github.com/google/uuid"
)

type ArticleState string

const (
	StateDraft     ArticleState = "draft"
	StateScheduled ArticleState = "scheduled"
	StatePublished ArticleState = "published"
)

// Article is a short news post. Published and PublishAt together drive the
// scheduling lifecycle; everything else is opaque payload.
type Article struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Author    string     `json:"author"`
	Images    []string   `json:"images"`
	Files     []string   `json:"files"`
	Published bool       `json:"published"`
	PublishAt *time.Time `json:"publishAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// State derives the lifecycle state from the two scheduling fields.
// Writes normalize an unpublished article whose PublishAt has already
// passed, so that combination never survives persistence.
func (a *Article) State() ArticleState {
	switch {
	case a.Published:
		return StatePublished
	case a.PublishAt != nil:
		return StateScheduled
	default:
		return StateDraft
	}
}

// NewArticle creates a draft owned by author with a fresh id.
// The lifecycle layer normalizes the scheduling fields before saving.
func NewArticle(author, title, content string) Article {
	now := time.Now()
	return Article{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		Author:    author,
		Images:    []string{},
		Files:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

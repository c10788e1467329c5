package store

import (
	"context"
	"errors"

	"newsdesk/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("article not found")
)

// ListFilter narrows List results. A nil Published means no filtering.
type ListFilter struct {
	Published *bool
}

type Store interface {
	Create(ctx context.Context, article *model.Article) error
	Get(ctx context.Context, id uuid.UUID) (*model.Article, error)
	List(ctx context.Context, filter ListFilter, limit int) ([]model.Article, error)
	// ListScheduled returns every article pending a scheduled publication,
	// ordered by deadline. Recovery walks this at startup.
	ListScheduled(ctx context.Context) ([]model.Article, error)
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
}

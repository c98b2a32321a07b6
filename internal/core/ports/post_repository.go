package ports

import (
	"context"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// PostFilter narrows a post listing. Search matches title or content,
// case-insensitively.
type PostFilter struct {
	Search string
	Page   Page
}

// PostRepository defines persistence operations for catalog posts.
type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*domain.Post, int64, error)
	Save(ctx context.Context, p *domain.Post) error
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

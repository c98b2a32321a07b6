package ports

import (
	"context"
	"io"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageStore keeps uploaded images and deletes them by public id.
type ImageStore interface {
	Save(ctx context.Context, upload Upload) (domain.Image, error)
	Destroy(ctx context.Context, publicID string) error
}

// CreatePostInput carries a new catalog entry.
type CreatePostInput struct {
	Title   string
	Content string
	Images  []Upload
}

// UpdatePostInput carries a partial post change. Non-empty Images replace the
// existing ones.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Images  []Upload
}

// ListPostsResult is a page of posts plus the overall count.
type ListPostsResult struct {
	Items []*domain.Post
	Total int64
	Page  int
	Limit int
}

// CatalogService defines the use cases of the exhibit catalog.
type CatalogService interface {
	Create(ctx context.Context, caller *domain.User, in CreatePostInput) (*domain.Post, error)
	List(ctx context.Context, filter PostFilter) (*ListPostsResult, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	Update(ctx context.Context, caller *domain.User, id string, in UpdatePostInput) (*domain.Post, error)
	Delete(ctx context.Context, caller *domain.User, id string) error
}

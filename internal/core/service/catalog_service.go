package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

const (
	defaultPostPageSize = 20
	maxPostImages       = 3
)

// CatalogService manages exhibits and their images.
type CatalogService struct {
	repo   ports.PostRepository
	images ports.ImageStore
	log    zerolog.Logger
}

func NewCatalogService(repo ports.PostRepository, images ports.ImageStore, log zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, images: images, log: log}
}

// Create stores the uploaded images and persists a new post owned by caller.
func (s *CatalogService) Create(ctx context.Context, caller *domain.User, in ports.CreatePostInput) (*domain.Post, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if len(in.Images) == 0 {
		return nil, fmt.Errorf("%w: images are required", domain.ErrInvalidInput)
	}
	if len(in.Images) > maxPostImages {
		return nil, fmt.Errorf("%w: at most %d images are allowed", domain.ErrInvalidInput, maxPostImages)
	}

	images, err := s.store(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &domain.Post{
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		UserID:    caller.ID,
		Images:    images,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		s.destroy(ctx, images)
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.Info().Str("post_id", post.ID).Int("images", len(images)).Msg("post created")
	return post, nil
}

// List returns a page of posts matching filter, newest first.
func (s *CatalogService) List(ctx context.Context, filter ports.PostFilter) (*ports.ListPostsResult, error) {
	filter.Page = filter.Page.Normalize(defaultPostPageSize)
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &ports.ListPostsResult{Items: items, Total: total, Page: filter.Page.Number, Limit: filter.Page.Size}, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies the present fields. New images replace the old ones, which
// are then destroyed on a best-effort basis.
func (s *CatalogService) Update(ctx context.Context, caller *domain.User, id string, in ports.UpdatePostInput) (*domain.Post, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if len(in.Images) > maxPostImages {
		return nil, fmt.Errorf("%w: at most %d images are allowed", domain.ErrInvalidInput, maxPostImages)
	}

	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil && *in.Content != "" {
		post.Content = *in.Content
	}

	var replaced []domain.Image
	if len(in.Images) > 0 {
		images, err := s.store(ctx, in.Images)
		if err != nil {
			return nil, err
		}
		replaced = post.Images
		post.Images = images
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.destroy(ctx, replaced)
	return post, nil
}

// Delete removes the post and then destroys its images. Images are only
// touched once the record is gone.
func (s *CatalogService) Delete(ctx context.Context, caller *domain.User, id string) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}

	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.destroy(ctx, post.Images)

	s.log.Info().Str("post_id", id).Msg("post deleted")
	return nil
}

// store saves every upload; on failure the images stored so far are removed.
func (s *CatalogService) store(ctx context.Context, uploads []ports.Upload) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(uploads))
	for _, u := range uploads {
		img, err := s.images.Save(ctx, u)
		if err != nil {
			s.destroy(ctx, images)
			return nil, fmt.Errorf("store image %q: %w", u.Filename, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func (s *CatalogService) destroy(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := s.images.Destroy(ctx, img.PublicID); err != nil {
			s.log.Warn().Err(err).Str("public_id", img.PublicID).Msg("failed to delete image")
		}
	}
}

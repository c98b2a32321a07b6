package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// UserAdminService implements the admin-only user operations. Every method
// re-checks the caller's role so it stays safe when mounted without the
// RequireAdmin middleware.
type UserAdminService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserAdminService(repo ports.UserRepository, log zerolog.Logger) *UserAdminService {
	return &UserAdminService{repo: repo, log: log}
}

// ListUsers returns one page of users, newest first, with the total.
func (s *UserAdminService) ListUsers(ctx context.Context, caller *domain.User, page ports.Page) (*ports.ListUsersResult, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	page = page.Normalize(ports.DefaultPageSize)

	items, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.ListUsersResult{Items: items, Total: total, Page: page.Number, Limit: page.Size}, nil
}

// PromoteToAdmin sets the target's role to "admin".
func (s *UserAdminService) PromoteToAdmin(ctx context.Context, caller *domain.User, userID string) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		return user, nil
	}

	user.Role = domain.RoleAdmin
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("by", caller.ID).Msg("user promoted to admin")
	return user, nil
}

// DeleteAccount removes the target user. Their bookings and posts are kept.
func (s *UserAdminService) DeleteAccount(ctx context.Context, caller *domain.User, userID string) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := s.repo.DeleteByID(ctx, userID); err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Str("by", caller.ID).Msg("user account deleted")
	return nil
}

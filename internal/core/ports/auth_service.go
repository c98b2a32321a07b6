package ports

import (
	"context"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// RegisterInput is the canonical registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput carries a partial profile change; empty fields are kept.
type UpdateProfileInput struct {
	Username string
	Email    string
	Password string
}

// AuthService covers the credential lifecycle of a single user.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	UpdateProfile(ctx context.Context, caller *domain.User, in UpdateProfileInput) (*domain.User, error)
}

// ListUsersResult is a page of users plus the overall count.
type ListUsersResult struct {
	Items []*domain.User
	Total int64
	Page  int
	Limit int
}

// UserAdminService groups the admin-only user operations.
type UserAdminService interface {
	ListUsers(ctx context.Context, caller *domain.User, page Page) (*ListUsersResult, error)
	PromoteToAdmin(ctx context.Context, caller *domain.User, userID string) (*domain.User, error)
	DeleteAccount(ctx context.Context, caller *domain.User, userID string) error
}

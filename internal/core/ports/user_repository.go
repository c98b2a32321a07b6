package ports

import (
	"context"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// UserFilter narrows a user count. Empty fields are ignored; set fields are ANDed.
type UserFilter struct {
	Username string
	Email    string
	Role     string
}

// UserRepository defines the persistence operations of the credential store.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Save replaces the mutable fields (username, email, password hash, role).
	// The tickets cache is only ever written through AppendTicket.
	Save(ctx context.Context, user *domain.User) error
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context, filter UserFilter) (int64, error)
	List(ctx context.Context, page Page) ([]*domain.User, int64, error)
	// AppendTicket pushes a summary onto the user's denormalized ticket list.
	AppendTicket(ctx context.Context, userID string, ticket domain.TicketSummary) error
}

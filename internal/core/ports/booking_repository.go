package ports

import (
	"context"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// BookingListOptions controls paging of booking queries. Listings are always
// ordered by creation time, newest first. A zero Limit means no limit.
type BookingListOptions struct {
	Skip  int64
	Limit int64
}

// BookingRepository defines the persistence operations of the booking ledger.
type BookingRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByOwner(ctx context.Context, ownerID string, opts BookingListOptions) ([]*domain.Booking, error)
	FindAll(ctx context.Context, opts BookingListOptions) ([]*domain.Booking, error)
	Create(ctx context.Context, b *domain.Booking) error
	Save(ctx context.Context, b *domain.Booking) error
	DeleteByID(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int64, error)
}

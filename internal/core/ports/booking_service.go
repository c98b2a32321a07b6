package ports

import (
	"context"
	"time"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// CreateBookingInput is the canonical booking request. Aliases accepted on the
// wire are resolved by the transport layer before this struct is built.
type CreateBookingInput struct {
	EventName      string
	EventDate      time.Time
	TicketPrice    *float64
	TicketCount    *int
	IdempotencyKey string
}

// UpdateBookingInput carries a partial update; nil fields are left untouched.
type UpdateBookingInput struct {
	EventName   *string
	EventDate   *time.Time
	TicketPrice *float64
	TicketCount *int
}

// CreateBookingResult wraps the created booking.
type CreateBookingResult struct {
	Booking *domain.Booking
	// Replayed is true when the Idempotency-Key matched an earlier booking.
	Replayed bool
}

// ListBookingsResult is a page of ledger entries plus the overall count.
// Owners is keyed by user id and only holds owners that still exist.
type ListBookingsResult struct {
	Items  []*domain.Booking
	Owners map[string]domain.Owner
	Total  int64
	Page   int
	Limit  int
}

// OwnerDirectory resolves booking owners for admin listings.
type OwnerDirectory interface {
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
}

// BookingService defines the use cases of the booking ledger. The caller is
// always the user resolved by the access guard.
type BookingService interface {
	Create(ctx context.Context, caller *domain.User, in CreateBookingInput) (*CreateBookingResult, error)
	ListForOwner(ctx context.Context, caller *domain.User) ([]*domain.Booking, error)
	Update(ctx context.Context, caller *domain.User, id string, in UpdateBookingInput) (*domain.Booking, error)
	Delete(ctx context.Context, caller *domain.User, id string) error
	ListAll(ctx context.Context, caller *domain.User, page Page) (*ListBookingsResult, error)
}

// TicketMirror copies a booking summary onto the owner's user record. It is
// best-effort: implementations log failures instead of returning them.
type TicketMirror interface {
	Mirror(ctx context.Context, userID string, ticket domain.TicketSummary)
}

// IdempotencyStore remembers which booking answered an Idempotency-Key.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, key string) (bookingID string, found bool, err error)
	Remember(ctx context.Context, userID, key, bookingID string) error
}

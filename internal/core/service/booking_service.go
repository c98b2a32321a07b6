package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/api/metrics"
	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// BookingService owns the booking ledger and keeps the owner's denormalized
// ticket list updated on a best-effort basis.
type BookingService struct {
	repo   ports.BookingRepository
	mirror ports.TicketMirror
	idem   ports.IdempotencyStore
	owners ports.OwnerDirectory
	log    zerolog.Logger
	now    func() time.Time
}

// NewBookingService wires the ledger. idem may be nil, in which case
// Idempotency-Key headers are ignored. owners may be nil, in which case admin
// listings carry owner ids only.
func NewBookingService(
	repo ports.BookingRepository,
	mirror ports.TicketMirror,
	idem ports.IdempotencyStore,
	owners ports.OwnerDirectory,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{repo: repo, mirror: mirror, idem: idem, owners: owners, log: log, now: time.Now}
}

// Create persists a new ledger entry owned by caller and then mirrors a
// summary onto the caller's record. A failed mirror never fails the booking.
func (s *BookingService) Create(ctx context.Context, caller *domain.User, in ports.CreateBookingInput) (*ports.CreateBookingResult, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	if replay := s.replay(ctx, caller.ID, in.IdempotencyKey); replay != nil {
		return &ports.CreateBookingResult{Booking: replay, Replayed: true}, nil
	}

	count := 1
	if in.TicketCount != nil {
		count = *in.TicketCount
	}

	now := s.now().UTC()
	booking := &domain.Booking{
		UserID:      caller.ID,
		EventName:   strings.TrimSpace(in.EventName),
		EventDate:   in.EventDate.UTC(),
		TicketPrice: *in.TicketPrice,
		TicketCount: count,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.BookingsCreatedTotal.Inc()
	s.log.Info().
		Str("booking_id", booking.ID).
		Str("user_id", caller.ID).
		Str("event", booking.EventName).
		Int("count", booking.TicketCount).
		Msg("booking created")

	s.mirror.Mirror(ctx, caller.ID, booking.Summary())

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, caller.ID, in.IdempotencyKey, booking.ID); err != nil {
			s.log.Warn().Err(err).Str("booking_id", booking.ID).Msg("failed to store idempotency key")
		}
	}

	return &ports.CreateBookingResult{Booking: booking}, nil
}

// replay returns the booking an earlier request with the same key created, or
// nil when the request should be processed normally.
func (s *BookingService) replay(ctx context.Context, userID, key string) *domain.Booking {
	if key == "" || s.idem == nil {
		return nil
	}

	bookingID, found, err := s.idem.Lookup(ctx, userID, key)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("idempotency lookup failed, processing anyway")
		return nil
	}
	if !found {
		return nil
	}

	existing, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		// The original booking was deleted in the meantime; book again.
		s.log.Debug().Err(err).Str("booking_id", bookingID).Msg("idempotent booking no longer available")
		return nil
	}

	s.log.Info().Str("idempotency_key", key).Str("booking_id", existing.ID).Msg("idempotent replay")
	return existing
}

// ListForOwner returns every booking owned by caller, newest first.
func (s *BookingService) ListForOwner(ctx context.Context, caller *domain.User) ([]*domain.Booking, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	items, err := s.repo.FindByOwner(ctx, caller.ID, ports.BookingListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return items, nil
}

// Update applies the fields present in in. Only the owner or an admin may
// change a booking.
func (s *BookingService) Update(ctx context.Context, caller *domain.User, id string, in ports.UpdateBookingInput) (*domain.Booking, error) {
	booking, err := s.loadForChange(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if in.EventName != nil {
		name := strings.TrimSpace(*in.EventName)
		if name == "" {
			return nil, fmt.Errorf("%w: eventName cannot be empty", domain.ErrInvalidInput)
		}
		booking.EventName = name
	}
	if in.EventDate != nil {
		booking.EventDate = in.EventDate.UTC()
	}
	if in.TicketPrice != nil {
		if *in.TicketPrice < 0 {
			return nil, fmt.Errorf("%w: ticketPrice must not be negative", domain.ErrInvalidInput)
		}
		booking.TicketPrice = *in.TicketPrice
	}
	if in.TicketCount != nil {
		if *in.TicketCount < 1 {
			return nil, fmt.Errorf("%w: ticketCount must be at least 1", domain.ErrInvalidInput)
		}
		booking.TicketCount = *in.TicketCount
	}
	booking.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return booking, nil
}

// Delete removes a booking. The summary on the owner's record is left in
// place.
func (s *BookingService) Delete(ctx context.Context, caller *domain.User, id string) error {
	if _, err := s.loadForChange(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	metrics.BookingsDeletedTotal.Inc()
	s.log.Info().Str("booking_id", id).Str("user_id", caller.ID).Msg("booking deleted")
	return nil
}

// ListAll returns one page of every booking, newest first, with the total.
func (s *BookingService) ListAll(ctx context.Context, caller *domain.User, page ports.Page) (*ports.ListBookingsResult, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	page = page.Normalize(ports.DefaultPageSize)

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	items, err := s.repo.FindAll(ctx, ports.BookingListOptions{Skip: page.Skip(), Limit: int64(page.Size)})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return &ports.ListBookingsResult{
		Items:  items,
		Owners: s.resolveOwners(ctx, items),
		Total:  total,
		Page:   page.Number,
		Limit:  page.Size,
	}, nil
}

// resolveOwners batch-loads the owners of items. A failed lookup is logged and
// yields an empty map; the listing itself still succeeds.
func (s *BookingService) resolveOwners(ctx context.Context, items []*domain.Booking) map[string]domain.Owner {
	owners := make(map[string]domain.Owner)
	if s.owners == nil || len(items) == 0 {
		return owners
	}

	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, b := range items {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		ids = append(ids, b.UserID)
	}

	users, err := s.owners.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Int("owners", len(ids)).Msg("failed to load booking owners")
		return owners
	}
	for _, u := range users {
		owners[u.ID] = domain.Owner{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return owners
}

func (s *BookingService) loadForChange(ctx context.Context, caller *domain.User, id string) (*domain.Booking, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.OwnedBy(caller.ID) && !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

func validateCreate(in ports.CreateBookingInput) error {
	var missing []string
	if strings.TrimSpace(in.EventName) == "" {
		missing = append(missing, "eventName")
	}
	if in.EventDate.IsZero() {
		missing = append(missing, "eventDate")
	}
	if in.TicketPrice == nil {
		missing = append(missing, "ticketPrice")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing fields: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if *in.TicketPrice < 0 {
		return fmt.Errorf("%w: ticketPrice must not be negative", domain.ErrInvalidInput)
	}
	if in.TicketCount != nil && *in.TicketCount < 1 {
		return fmt.Errorf("%w: ticketCount must be at least 1", domain.ErrInvalidInput)
	}
	return nil
}

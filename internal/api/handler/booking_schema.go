package handler

import (
	"strings"
	"time"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// bookingRequest accepts both the ledger field names and the names used by
// the ticket desk UI. The ledger name wins when both are present.
type bookingRequest struct {
	EventName   string   `json:"eventName"`
	TicketType  string   `json:"ticketType"`
	EventDate   string   `json:"eventDate"`
	VisitDate   string   `json:"visitDate"`
	TicketPrice *float64 `json:"ticketPrice"`
	TotalPrice  *float64 `json:"totalPrice"`
	TicketCount *int     `json:"ticketCount"`
	Quantity    *int     `json:"quantity"`
}

func (r bookingRequest) eventName() string { return firstNonEmpty(r.EventName, r.TicketType) }
func (r bookingRequest) eventDate() string { return firstNonEmpty(r.EventDate, r.VisitDate) }

func (r bookingRequest) price() *float64 {
	if r.TicketPrice != nil {
		return r.TicketPrice
	}
	return r.TotalPrice
}

func (r bookingRequest) count() *int {
	if r.TicketCount != nil {
		return r.TicketCount
	}
	return r.Quantity
}

// toCreateInput resolves aliases into the canonical booking input. Presence
// checks are left to the service so missing fields are reported together.
func (r bookingRequest) toCreateInput(idempotencyKey string) (ports.CreateBookingInput, error) {
	in := ports.CreateBookingInput{
		EventName:      r.eventName(),
		TicketPrice:    r.price(),
		TicketCount:    r.count(),
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
	if raw := r.eventDate(); raw != "" {
		d, err := parseEventDate(raw)
		if err != nil {
			return ports.CreateBookingInput{}, err
		}
		in.EventDate = d
	}
	return in, nil
}

// toUpdateInput keeps only the fields the client actually sent.
func (r bookingRequest) toUpdateInput() (ports.UpdateBookingInput, error) {
	var in ports.UpdateBookingInput
	if r.EventName != "" || r.TicketType != "" {
		name := r.eventName()
		in.EventName = &name
	}
	if raw := r.eventDate(); raw != "" {
		d, err := parseEventDate(raw)
		if err != nil {
			return ports.UpdateBookingInput{}, err
		}
		in.EventDate = &d
	}
	in.TicketPrice = r.price()
	in.TicketCount = r.count()
	return in, nil
}

// parseEventDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, invalidInput("eventDate must be RFC 3339 or YYYY-MM-DD")
}

type bookingResponse struct {
	Message string          `json:"message"`
	Booking *domain.Booking `json:"booking"`
}

type bookingListResponse struct {
	Bookings []*domain.Booking `json:"bookings"`
}

// ownedBookingResponse replaces the owner id with the owner's name and email.
type ownedBookingResponse struct {
	*domain.Booking
	User domain.Owner `json:"user"`
}

type ownedBookingPageResponse struct {
	Bookings []ownedBookingResponse `json:"bookings"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	Limit    int                    `json:"limit"`
}

// withOwners pairs each booking with its owner. Owners that no longer exist
// are reported by id only.
func withOwners(items []*domain.Booking, owners map[string]domain.Owner) []ownedBookingResponse {
	out := make([]ownedBookingResponse, 0, len(items))
	for _, b := range items {
		owner, ok := owners[b.UserID]
		if !ok {
			owner = domain.Owner{ID: b.UserID}
		}
		out = append(out, ownedBookingResponse{Booking: b, User: owner})
	}
	return out
}

func nonNilBookings(items []*domain.Booking) []*domain.Booking {
	if items == nil {
		return []*domain.Booking{}
	}
	return items
}

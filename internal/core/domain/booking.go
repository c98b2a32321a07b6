package domain

import "time"

// Booking is an authoritative ledger entry for a single ticket purchase.
type Booking struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"user"`
	EventName   string    `json:"eventName"`
	EventDate   time.Time `json:"eventDate"`
	TicketPrice float64   `json:"ticketPrice"`
	TicketCount int       `json:"ticketCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TotalPrice is the unit price multiplied by the ticket count.
func (b *Booking) TotalPrice() float64 {
	return b.TicketPrice * float64(b.TicketCount)
}

// OwnedBy reports whether userID owns the booking.
func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID != "" && b.UserID == userID
}

// Summary builds the denormalized entry mirrored onto the owner's record.
func (b *Booking) Summary() TicketSummary {
	return TicketSummary{
		BookingID:  b.ID,
		TicketType: b.EventName,
		Quantity:   b.TicketCount,
		VisitDate:  b.EventDate,
		TotalPrice: b.TotalPrice(),
		Status:     TicketStatusConfirmed,
		CreatedAt:  b.CreatedAt,
	}
}

// Owner identifies who made a booking in admin listings.
type Owner struct {
	ID       string `json:"_id"`
	Username string `json:"userName"`
	Email    string `json:"email"`
}

// TicketType is an entry of the static ticket catalog.
type TicketType struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// TicketTypes lists the ticket types offered at the desk.
var TicketTypes = []TicketType{
	{ID: "1", Name: "Adult", Price: 25, Description: "Ages 18+"},
	{ID: "2", Name: "Child", Price: 12, Description: "Ages 3-17"},
	{ID: "3", Name: "Senior", Price: 18, Description: "Ages 65+"},
	{ID: "4", Name: "Student", Price: 15, Description: "With valid ID"},
}

package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TicketStatusConfirmed is the only status the ledger currently hands out.
const TicketStatusConfirmed = "confirmed"

// TicketSummary is the denormalized copy of a booking kept on the user record.
// It may lag behind or omit ledger entries; the bookings collection is the
// source of truth.
type TicketSummary struct {
	BookingID  string    `json:"bookingId"`
	TicketType string    `json:"ticketType"`
	Quantity   int       `json:"quantity"`
	VisitDate  time.Time `json:"visitDate"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// User models an authenticated actor in the system.
type User struct {
	ID           string          `json:"_id"`
	Username     string          `json:"userName"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         string          `json:"role"`
	CreatedAt    time.Time       `json:"createdAt"`
	Tickets      []TicketSummary `json:"tickets"`
}

// IsAdmin reports whether the user's role field is exactly "admin".
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

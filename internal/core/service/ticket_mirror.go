package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/api/metrics"
	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// TicketMirror appends booking summaries to the owner's user record in the
// caller's goroutine. Failures are logged and counted, never returned.
type TicketMirror struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewTicketMirror(users ports.UserRepository, log zerolog.Logger) *TicketMirror {
	return &TicketMirror{users: users, log: log}
}

// Mirror satisfies ports.TicketMirror.
func (m *TicketMirror) Mirror(ctx context.Context, userID string, ticket domain.TicketSummary) {
	if err := m.users.AppendTicket(ctx, userID, ticket); err != nil {
		metrics.TicketMirrorTotal.WithLabelValues("failed").Inc()
		m.log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("booking_id", ticket.BookingID).
			Msg("failed to mirror ticket onto user record")
		return
	}
	metrics.TicketMirrorTotal.WithLabelValues("ok").Inc()
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

type bookingFixture struct {
	svc      *BookingService
	bookings *stubBookingRepo
	users    *stubUserRepo
	idem     *stubIdem
	alice    *domain.User
	bob      *domain.User
	admin    *domain.User
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	users := newStubUserRepo()
	bookings := newStubBookingRepo()
	idem := newStubIdem()
	mirror := NewTicketMirror(users, zerolog.Nop())

	svc := NewBookingService(bookings, mirror, idem, users, zerolog.Nop())
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return &bookingFixture{
		svc:      svc,
		bookings: bookings,
		users:    users,
		idem:     idem,
		alice:    users.seed(&domain.User{Username: "alice", Email: "a@x.io", Role: domain.RoleUser}),
		bob:      users.seed(&domain.User{Username: "bob", Email: "b@x.io", Role: domain.RoleUser}),
		admin:    users.seed(&domain.User{Username: "root", Email: "r@x.io", Role: domain.RoleAdmin}),
	}
}

func adultInput() ports.CreateBookingInput {
	return ports.CreateBookingInput{
		EventName:   "Adult",
		EventDate:   mustDate("2025-03-10"),
		TicketPrice: ptr(25.0),
		TicketCount: ptr(2),
	}
}

func TestCreate_PersistsAndMirrors(t *testing.T) {
	f := newBookingFixture(t)

	res, err := f.svc.Create(context.Background(), f.alice, adultInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Replayed {
		t.Error("first booking must not be a replay")
	}
	b := res.Booking
	if b.ID == "" || b.UserID != f.alice.ID {
		t.Fatalf("unexpected booking identity: %+v", b)
	}
	if b.TicketCount != 2 || b.TicketPrice != 25 {
		t.Errorf("unexpected amounts: count=%d price=%v", b.TicketCount, b.TicketPrice)
	}

	tickets := f.users.tickets(f.alice.ID)
	if len(tickets) != 1 {
		t.Fatalf("expected 1 mirrored ticket, got %d", len(tickets))
	}
	got := tickets[0]
	if got.BookingID != b.ID || got.TicketType != "Adult" || got.Quantity != 2 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.TotalPrice != 50 {
		t.Errorf("expected total 50, got %v", got.TotalPrice)
	}
	if got.Status != domain.TicketStatusConfirmed {
		t.Errorf("expected status confirmed, got %q", got.Status)
	}
}

func TestCreate_DefaultsTicketCountToOne(t *testing.T) {
	f := newBookingFixture(t)
	in := adultInput()
	in.TicketCount = nil

	res, err := f.svc.Create(context.Background(), f.alice, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Booking.TicketCount != 1 {
		t.Errorf("expected default count 1, got %d", res.Booking.TicketCount)
	}
}

func TestCreate_MirrorFailureDoesNotFailBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.users.appendErr = errors.New("mongo: connection reset")

	res, err := f.svc.Create(context.Background(), f.alice, adultInput())
	if err != nil {
		t.Fatalf("mirror failure must not surface, got %v", err)
	}
	if _, err := f.bookings.FindByID(context.Background(), res.Booking.ID); err != nil {
		t.Errorf("booking must be persisted: %v", err)
	}
	if n := len(f.users.tickets(f.alice.ID)); n != 0 {
		t.Errorf("expected empty mirror after failure, got %d entries", n)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ports.CreateBookingInput)
	}{
		{"missing event name", func(in *ports.CreateBookingInput) { in.EventName = "  " }},
		{"missing event date", func(in *ports.CreateBookingInput) { in.EventDate = time.Time{} }},
		{"missing price", func(in *ports.CreateBookingInput) { in.TicketPrice = nil }},
		{"negative price", func(in *ports.CreateBookingInput) { in.TicketPrice = ptr(-1.0) }},
		{"zero count", func(in *ports.CreateBookingInput) { in.TicketCount = ptr(0) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture(t)
			in := adultInput()
			tc.mutate(&in)

			_, err := f.svc.Create(context.Background(), f.alice, in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(f.bookings.byID) != 0 {
				t.Error("nothing must be persisted on invalid input")
			}
		})
	}
}

func TestCreate_RequiresCaller(t *testing.T) {
	f := newBookingFixture(t)
	if _, err := f.svc.Create(context.Background(), nil, adultInput()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreate_IdempotentReplay(t *testing.T) {
	f := newBookingFixture(t)
	in := adultInput()
	in.IdempotencyKey = "k-1"

	first, err := f.svc.Create(context.Background(), f.alice, in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := f.svc.Create(context.Background(), f.alice, in)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	if !second.Replayed {
		t.Error("second call must be flagged as replay")
	}
	if second.Booking.ID != first.Booking.ID {
		t.Errorf("replay returned %s, want %s", second.Booking.ID, first.Booking.ID)
	}
	if len(f.bookings.byID) != 1 {
		t.Errorf("expected a single ledger entry, got %d", len(f.bookings.byID))
	}
	if n := len(f.users.tickets(f.alice.ID)); n != 1 {
		t.Errorf("replay must not mirror again, got %d entries", n)
	}
}

func TestCreate_IdempotencyKeysAreScopedPerUser(t *testing.T) {
	f := newBookingFixture(t)
	in := adultInput()
	in.IdempotencyKey = "shared"

	a, _ := f.svc.Create(context.Background(), f.alice, in)
	b, err := f.svc.Create(context.Background(), f.bob, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Replayed || b.Booking.ID == a.Booking.ID {
		t.Error("a key used by another user must not replay their booking")
	}
}

func TestCreate_IdempotencyLookupFailureStillBooks(t *testing.T) {
	f := newBookingFixture(t)
	f.idem.lookupErr = errors.New("redis down")
	in := adultInput()
	in.IdempotencyKey = "k-1"

	res, err := f.svc.Create(context.Background(), f.alice, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Replayed {
		t.Error("must not replay when the store is unavailable")
	}
}

func TestListForOwner_NewestFirstAndScoped(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	first, _ := f.svc.Create(ctx, f.alice, adultInput())
	_, _ = f.svc.Create(ctx, f.bob, adultInput())
	second, _ := f.svc.Create(ctx, f.alice, adultInput())

	items, err := f.svc.ListForOwner(ctx, f.alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(items))
	}
	if items[0].ID != second.Booking.ID || items[1].ID != first.Booking.ID {
		t.Errorf("expected newest first, got %s then %s", items[0].ID, items[1].ID)
	}
}

func TestListForOwner_EmptyIsNotAnError(t *testing.T) {
	f := newBookingFixture(t)
	items, err := f.svc.ListForOwner(context.Background(), f.bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no bookings, got %d", len(items))
	}
}

func TestUpdate_OwnerAndAdmin(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	res, _ := f.svc.Create(ctx, f.alice, adultInput())

	updated, err := f.svc.Update(ctx, f.alice, res.Booking.ID, ports.UpdateBookingInput{TicketCount: ptr(4)})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.TicketCount != 4 || updated.EventName != "Adult" {
		t.Errorf("partial update lost fields: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("updatedAt must advance")
	}

	updated, err = f.svc.Update(ctx, f.admin, res.Booking.ID, ports.UpdateBookingInput{EventName: ptr("Senior")})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.EventName != "Senior" || updated.UserID != f.alice.ID {
		t.Errorf("admin update must keep ownership: %+v", updated)
	}
}

func TestUpdate_ForeignUserForbidden(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	res, _ := f.svc.Create(ctx, f.alice, adultInput())

	_, err := f.svc.Update(ctx, f.bob, res.Booking.ID, ports.UpdateBookingInput{TicketCount: ptr(9)})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	stored, _ := f.bookings.FindByID(ctx, res.Booking.ID)
	if stored.TicketCount != 2 {
		t.Errorf("forbidden update must not persist, count=%d", stored.TicketCount)
	}
}

func TestUpdate_InvalidFields(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	res, _ := f.svc.Create(ctx, f.alice, adultInput())

	if _, err := f.svc.Update(ctx, f.alice, res.Booking.ID, ports.UpdateBookingInput{TicketCount: ptr(0)}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero count: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.Update(ctx, f.alice, res.Booking.ID, ports.UpdateBookingInput{EventName: ptr("")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty name: expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdate_Missing(t *testing.T) {
	f := newBookingFixture(t)
	_, err := f.svc.Update(context.Background(), f.admin, "nope", ports.UpdateBookingInput{})
	if !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestDelete_OwnerThenNotFound(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	res, _ := f.svc.Create(ctx, f.alice, adultInput())

	if err := f.svc.Delete(ctx, f.bob, res.Booking.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for bob, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.alice, res.Booking.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := f.svc.Delete(ctx, f.alice, res.Booking.ID); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound on second delete, got %v", err)
	}

	// The mirrored summary is intentionally left behind.
	if n := len(f.users.tickets(f.alice.ID)); n != 1 {
		t.Errorf("expected mirror to keep 1 entry, got %d", n)
	}
}

func TestDelete_Admin(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	res, _ := f.svc.Create(ctx, f.alice, adultInput())

	if err := f.svc.Delete(ctx, f.admin, res.Booking.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestListAll_Paginates(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 5; i++ {
		res, err := f.svc.Create(ctx, f.alice, adultInput())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, res.Booking.ID)
	}

	out, err := f.svc.ListAll(ctx, f.admin, ports.Page{Number: 1, Size: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 5 {
		t.Errorf("expected total 5, got %d", out.Total)
	}
	if len(out.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out.Items))
	}
	if out.Items[0].ID != ids[4] || out.Items[1].ID != ids[3] {
		t.Errorf("expected the two newest bookings, got %s and %s", out.Items[0].ID, out.Items[1].ID)
	}

	out, _ = f.svc.ListAll(ctx, f.admin, ports.Page{Number: 3, Size: 2})
	if len(out.Items) != 1 || out.Items[0].ID != ids[0] {
		t.Errorf("expected last page to hold the oldest booking, got %+v", out.Items)
	}
}

func TestListAll_ResolvesOwners(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	for _, u := range []*domain.User{f.alice, f.alice, f.bob} {
		if _, err := f.svc.Create(ctx, u, adultInput()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	out, err := f.svc.ListAll(ctx, f.admin, ports.Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Owners) != 2 {
		t.Fatalf("expected 2 distinct owners, got %+v", out.Owners)
	}
	alice := out.Owners[f.alice.ID]
	if alice.Username != "alice" || alice.Email != "a@x.io" || alice.ID != f.alice.ID {
		t.Errorf("unexpected owner for alice: %+v", alice)
	}
	if out.Owners[f.bob.ID].Username != "bob" {
		t.Errorf("unexpected owner for bob: %+v", out.Owners[f.bob.ID])
	}
}

func TestListAll_OwnerLookupFailureStillLists(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, f.alice, adultInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.users.findIDsErr = errors.New("connection reset")

	out, err := f.svc.ListAll(ctx, f.admin, ports.Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Items) != 1 || len(out.Owners) != 0 {
		t.Fatalf("expected the booking without owners, got %d items and %+v", len(out.Items), out.Owners)
	}
}

func TestListAll_Defaults(t *testing.T) {
	f := newBookingFixture(t)
	out, err := f.svc.ListAll(context.Background(), f.admin, ports.Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Page != 1 || out.Limit != ports.DefaultPageSize {
		t.Errorf("expected page 1 limit %d, got page %d limit %d", ports.DefaultPageSize, out.Page, out.Limit)
	}
}

func TestListAll_NonAdminForbidden(t *testing.T) {
	f := newBookingFixture(t)
	if _, err := f.svc.ListAll(context.Background(), f.alice, ports.Page{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreate_RepositoryError(t *testing.T) {
	f := newBookingFixture(t)
	f.bookings.createErr = errors.New("write concern")

	_, err := f.svc.Create(context.Background(), f.alice, adultInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if n := len(f.users.tickets(f.alice.ID)); n != 0 {
		t.Errorf("nothing must be mirrored when the ledger write fails, got %d", n)
	}
}

func TestCreate_HandsSummaryToMirror(t *testing.T) {
	mirror := &recordingMirror{}
	svc := NewBookingService(newStubBookingRepo(), mirror, nil, nil, zerolog.Nop())
	caller := &domain.User{ID: "u1", Role: domain.RoleUser}

	in := adultInput()
	in.IdempotencyKey = "ignored without a store"
	res, err := svc.Create(context.Background(), caller, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mirror.calls) != 1 {
		t.Fatalf("expected 1 mirror call, got %d", len(mirror.calls))
	}
	if mirror.calls[0].BookingID != res.Booking.ID {
		t.Errorf("summary refers to %s, want %s", mirror.calls[0].BookingID, res.Booking.ID)
	}
	if !mirror.calls[0].VisitDate.Equal(mustDate("2025-03-10")) {
		t.Errorf("unexpected visit date %v", mirror.calls[0].VisitDate)
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

type stubAgg struct {
	revenue    float64
	months     []domain.MonthRevenue
	days       []domain.DayVisitors
	sold       []domain.TicketsSold
	monthSince time.Time
	daySince   time.Time
	calls      int
	err        error
}

func (a *stubAgg) TotalRevenue(context.Context) (float64, error) {
	a.calls++
	return a.revenue, a.err
}

func (a *stubAgg) RevenueByMonth(_ context.Context, since time.Time) ([]domain.MonthRevenue, error) {
	a.monthSince = since
	return a.months, a.err
}

func (a *stubAgg) VisitorsByDay(_ context.Context, since time.Time) ([]domain.DayVisitors, error) {
	a.daySince = since
	return a.days, a.err
}

func (a *stubAgg) TicketsSoldByEvent(context.Context) ([]domain.TicketsSold, error) {
	return a.sold, a.err
}

// mapCache stores JSON, like the Redis cache does.
type mapCache struct {
	data   map[string][]byte
	getErr error
}

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func newAnalyticsFixture(cache *mapCache, ttl time.Duration) (*AnalyticsService, *stubAgg, *stubBookingRepo) {
	users := newStubUserRepo()
	users.seed(&domain.User{Username: "a"})
	users.seed(&domain.User{Username: "b"})
	bookings := newStubBookingRepo()
	_ = bookings.Create(context.Background(), &domain.Booking{UserID: "x"})
	posts := newStubPostRepo()
	_ = posts.Create(context.Background(), &domain.Post{Title: "t"})
	agg := &stubAgg{revenue: 125.5}

	var c ports.Cache
	if cache != nil {
		c = cache
	}
	return NewAnalyticsService(users, bookings, posts, agg, c, ttl, zerolog.Nop()), agg, bookings
}

func TestStats_Counts(t *testing.T) {
	svc, _, _ := newAnalyticsFixture(nil, 0)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Stats{TotalUsers: 2, TotalBookings: 1, TotalRevenue: 125.5, TotalExhibits: 1}
	if *stats != want {
		t.Errorf("got %+v, want %+v", *stats, want)
	}
}

func TestStats_ServedFromCache(t *testing.T) {
	cache := &mapCache{data: map[string][]byte{}}
	svc, agg, bookings := newAnalyticsFixture(cache, time.Minute)
	ctx := context.Background()

	if _, err := svc.Stats(ctx); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_ = bookings.Create(ctx, &domain.Booking{UserID: "y"})

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if agg.calls != 1 {
		t.Errorf("expected a single aggregation, got %d", agg.calls)
	}
	if stats.TotalBookings != 1 {
		t.Errorf("expected cached booking count 1, got %d", stats.TotalBookings)
	}
}

func TestStats_CacheErrorFallsThrough(t *testing.T) {
	cache := &mapCache{data: map[string][]byte{}, getErr: errors.New("redis down")}
	svc, agg, _ := newAnalyticsFixture(cache, time.Minute)

	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.calls != 1 {
		t.Errorf("expected computation on cache failure, got %d calls", agg.calls)
	}
}

func TestAnalytics_WindowsAndSummary(t *testing.T) {
	svc, agg, _ := newAnalyticsFixture(nil, 0)
	agg.months = []domain.MonthRevenue{{Month: "2025-02", Revenue: 1000}, {Month: "2025-03", Revenue: 234.5}}
	agg.days = []domain.DayVisitors{{Day: "2025-03-14", Visitors: 3}, {Day: "2025-03-15", Visitors: 1200}}
	agg.sold = []domain.TicketsSold{{Name: "Adult", Value: 5}, {Name: "", Value: 2}}

	now := time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC)
	report, err := svc.Analytics(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC); !agg.monthSince.Equal(want) {
		t.Errorf("month window starts %v, want %v", agg.monthSince, want)
	}
	if want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC); !agg.daySince.Equal(want) {
		t.Errorf("day window starts %v, want %v", agg.daySince, want)
	}
	if report.TicketsSold[1].Name != "Ticket" {
		t.Errorf("expected unnamed event to read Ticket, got %q", report.TicketsSold[1].Name)
	}

	if len(report.Stats) != 1 {
		t.Fatalf("expected one summary, got %d", len(report.Stats))
	}
	sum := report.Stats[0]
	if sum.Revenue != "$1,234.50" {
		t.Errorf("revenue = %q", sum.Revenue)
	}
	if sum.Visitors != "1,203" {
		t.Errorf("visitors = %q", sum.Visitors)
	}
	if sum.TicketsSold != "7" {
		t.Errorf("ticketsSold = %q", sum.TicketsSold)
	}
	if sum.Growth != "N/A" {
		t.Errorf("growth = %q", sum.Growth)
	}
}

func TestAnalytics_EmptySeriesAreArrays(t *testing.T) {
	svc, _, _ := newAnalyticsFixture(nil, 0)

	report, err := svc.Analytics(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := json.Marshal(report)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	for _, key := range []string{"revenue", "visitors", "ticketsSold"} {
		if _, ok := decoded[key].([]any); !ok {
			t.Errorf("%s must encode as an array, got %v", key, decoded[key])
		}
	}
}

func TestAnalytics_PropagatesErrors(t *testing.T) {
	svc, agg, _ := newAnalyticsFixture(nil, 0)
	agg.err = errors.New("pipeline failed")
	if _, err := svc.Analytics(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

package ports

import (
	"context"
	"time"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// AnalyticsRepository runs the aggregation queries behind the admin dashboard.
type AnalyticsRepository interface {
	TotalRevenue(ctx context.Context) (float64, error)
	RevenueByMonth(ctx context.Context, since time.Time) ([]domain.MonthRevenue, error)
	VisitorsByDay(ctx context.Context, since time.Time) ([]domain.DayVisitors, error)
	TicketsSoldByEvent(ctx context.Context) ([]domain.TicketsSold, error)
}

// Cache is a small JSON value cache.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// AnalyticsSummary holds the dashboard totals rendered as display strings.
type AnalyticsSummary struct {
	Revenue     string `json:"revenue"`
	Visitors    string `json:"visitors"`
	TicketsSold string `json:"ticketsSold"`
	Growth      string `json:"growth"`
}

// AnalyticsReport is the dashboard payload.
type AnalyticsReport struct {
	Revenue     []domain.MonthRevenue `json:"revenue"`
	Visitors    []domain.DayVisitors  `json:"visitors"`
	TicketsSold []domain.TicketsSold  `json:"ticketsSold"`
	Stats       []AnalyticsSummary    `json:"stats"`
}

// AnalyticsService builds the admin reports.
type AnalyticsService interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	Analytics(ctx context.Context, now time.Time) (*AnalyticsReport, error)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

const statsCacheKey = "analytics:stats"

// AnalyticsService builds the admin dashboard from the ledger, the user store
// and the catalog. Stats are cached when a cache is configured.
type AnalyticsService struct {
	users    ports.UserRepository
	bookings ports.BookingRepository
	posts    ports.PostRepository
	agg      ports.AnalyticsRepository
	cache    ports.Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewAnalyticsService(
	users ports.UserRepository,
	bookings ports.BookingRepository,
	posts ports.PostRepository,
	agg ports.AnalyticsRepository,
	cache ports.Cache,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		users:    users,
		bookings: bookings,
		posts:    posts,
		agg:      agg,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Stats returns the headline counters.
func (s *AnalyticsService) Stats(ctx context.Context) (*domain.Stats, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		var cached domain.Stats
		hit, err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("stats cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}

func (s *AnalyticsService) computeStats(ctx context.Context) (*domain.Stats, error) {
	users, err := s.users.Count(ctx, ports.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	bookings, err := s.bookings.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	revenue, err := s.agg.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}
	exhibits, err := s.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	return &domain.Stats{
		TotalUsers:    users,
		TotalBookings: bookings,
		TotalRevenue:  revenue,
		TotalExhibits: exhibits,
	}, nil
}

// Analytics reports revenue for the last six calendar months, visitors for
// the last seven days and tickets sold per event, relative to now.
func (s *AnalyticsService) Analytics(ctx context.Context, now time.Time) (*ports.AnalyticsReport, error) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -6)

	revenue, err := s.agg.RevenueByMonth(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("revenue by month: %w", err)
	}
	visitors, err := s.agg.VisitorsByDay(ctx, dayStart)
	if err != nil {
		return nil, fmt.Errorf("visitors by day: %w", err)
	}
	sold, err := s.agg.TicketsSoldByEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("tickets sold: %w", err)
	}

	var totalRevenue float64
	for _, r := range revenue {
		totalRevenue += r.Revenue
	}
	var totalVisitors, totalSold int64
	for _, v := range visitors {
		totalVisitors += v.Visitors
	}
	for i := range sold {
		if sold[i].Name == "" {
			sold[i].Name = "Ticket"
		}
		totalSold += sold[i].Value
	}

	p := message.NewPrinter(language.English)
	return &ports.AnalyticsReport{
		Revenue:     nonNil(revenue),
		Visitors:    nonNil(visitors),
		TicketsSold: nonNil(sold),
		Stats: []ports.AnalyticsSummary{{
			Revenue:     p.Sprintf("$%.2f", totalRevenue),
			Visitors:    p.Sprintf("%d", totalVisitors),
			TicketsSold: p.Sprintf("%d", totalSold),
			Growth:      "N/A",
		}},
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

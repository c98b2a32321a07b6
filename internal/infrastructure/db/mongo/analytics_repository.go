package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// AnalyticsRepository runs the dashboard aggregations over the tickets
// collection.
type AnalyticsRepository struct {
	col *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{col: db.Collection(collectionTickets)}
}

// lineTotal is ticketPrice * ticketCount for a single booking.
var lineTotal = bson.M{"$multiply": bson.A{"$ticketPrice", "$ticketCount"}}

func (r *AnalyticsRepository) TotalRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": lineTotal}}}},
	}

	var rows []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return 0, fmt.Errorf("total revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Revenue, nil
}

// RevenueByMonth sums revenue per calendar month (UTC) for bookings created
// at or after since, oldest month first.
func (r *AnalyticsRepository) RevenueByMonth(ctx context.Context, since time.Time) ([]domain.MonthRevenue, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$createdAt"}},
			"revenue": bson.M{"$sum": lineTotal},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	var rows []struct {
		Month   string  `bson:"_id"`
		Revenue float64 `bson:"revenue"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("revenue by month: %w", err)
	}

	out := make([]domain.MonthRevenue, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.MonthRevenue{Month: row.Month, Revenue: row.Revenue})
	}
	return out, nil
}

// VisitorsByDay sums ticket counts per day (UTC) for bookings created at or
// after since, oldest day first.
func (r *AnalyticsRepository) VisitorsByDay(ctx context.Context, since time.Time) ([]domain.DayVisitors, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"visitors": bson.M{"$sum": "$ticketCount"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	var rows []struct {
		Day      string `bson:"_id"`
		Visitors int64  `bson:"visitors"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("visitors by day: %w", err)
	}

	out := make([]domain.DayVisitors, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.DayVisitors{Day: row.Day, Visitors: row.Visitors})
	}
	return out, nil
}

// TicketsSoldByEvent sums ticket counts per event name, best seller first.
func (r *AnalyticsRepository) TicketsSoldByEvent(ctx context.Context) ([]domain.TicketsSold, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$eventName", "value": bson.M{"$sum": "$ticketCount"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "value", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	var rows []struct {
		Name  string `bson:"_id"`
		Value int64  `bson:"value"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("tickets sold: %w", err)
	}

	out := make([]domain.TicketsSold, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.TicketsSold{Name: row.Name, Value: row.Value})
	}
	return out, nil
}

func (r *AnalyticsRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

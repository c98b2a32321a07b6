package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

const collectionTickets = "tickets"

// newestFirst is the only ordering the ledger exposes.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionTickets)}
}

type mongoBooking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        primitive.ObjectID `bson:"user"`
	EventName   string             `bson:"eventName"`
	EventDate   time.Time          `bson:"eventDate"`
	TicketPrice float64            `bson:"ticketPrice"`
	TicketCount int                `bson:"ticketCount"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (mb *mongoBooking) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:          mb.ID.Hex(),
		UserID:      mb.User.Hex(),
		EventName:   mb.EventName,
		EventDate:   mb.EventDate.UTC(),
		TicketPrice: mb.TicketPrice,
		TicketCount: mb.TicketCount,
		CreatedAt:   mb.CreatedAt.UTC(),
		UpdatedAt:   mb.UpdatedAt.UTC(),
	}
}

// Create inserts a ledger entry and sets b.ID.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	owner, err := primitive.ObjectIDFromHex(b.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid owner id", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoBooking{
		User:        owner,
		EventName:   b.EventName,
		EventDate:   b.EventDate,
		TicketPrice: b.TicketPrice,
		TicketCount: b.TicketCount,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert booking: unexpected id type %T", res.InsertedID)
	}
	b.ID = oid.Hex()
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	oid, err := objectID(id, domain.ErrBookingNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mb mongoBooking
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mb); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return mb.toDomain(), nil
}

func (r *BookingRepository) FindByOwner(ctx context.Context, ownerID string, opts ports.BookingListOptions) ([]*domain.Booking, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []*domain.Booking{}, nil
	}
	return r.find(ctx, bson.M{"user": owner}, opts)
}

func (r *BookingRepository) FindAll(ctx context.Context, opts ports.BookingListOptions) ([]*domain.Booking, error) {
	return r.find(ctx, bson.M{}, opts)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M, lo ports.BookingListOptions) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(newestFirst)
	if lo.Skip > 0 {
		opts.SetSkip(lo.Skip)
	}
	if lo.Limit > 0 {
		opts.SetLimit(lo.Limit)
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoBooking
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	out := make([]*domain.Booking, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// Save overwrites the editable fields of an existing booking.
func (r *BookingRepository) Save(ctx context.Context, b *domain.Booking) error {
	oid, err := objectID(b.ID, domain.ErrBookingNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"eventName":   b.EventName,
		"eventDate":   b.EventDate,
		"ticketPrice": b.TicketPrice,
		"ticketCount": b.TicketCount,
		"updatedAt":   b.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrBookingNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) CountAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the indexes backing owner listings and analytics.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "eventName", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

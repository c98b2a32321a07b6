package mongo

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

func TestObjectID_MalformedIsNotFound(t *testing.T) {
	if _, err := objectID("not-a-hex-id", domain.ErrBookingNotFound); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	want := primitive.NewObjectID()
	got, err := objectID(want.Hex(), domain.ErrBookingNotFound)
	if err != nil || got != want {
		t.Fatalf("round trip failed: %v %v", got, err)
	}
}

func TestSearchFilter(t *testing.T) {
	if f := searchFilter(""); len(f) != 0 {
		t.Fatalf("empty search must match everything, got %v", f)
	}

	f := searchFilter("c++ (bronze)")
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected title/content $or, got %v", f)
	}
	re, ok := or[0].(bson.M)["title"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on title, got %v", or[0])
	}
	if re.Options != "i" {
		t.Errorf("expected case-insensitive regex, got %q", re.Options)
	}
	if re.Pattern != `c\+\+ \(bronze\)` {
		t.Errorf("search must be matched literally, got %q", re.Pattern)
	}
}

func TestMongoUser_ToDomain(t *testing.T) {
	bookingID := primitive.NewObjectID()
	mu := mongoUser{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		Role:     domain.RoleUser,
		Tickets:  []mongoTicket{{BookingID: bookingID, TicketType: "Adult", Quantity: 2, TotalPrice: 50}},
	}

	u := mu.toDomain()
	if u.ID != mu.ID.Hex() || u.Username != "alice" {
		t.Fatalf("unexpected user %+v", u)
	}
	if len(u.Tickets) != 1 || u.Tickets[0].BookingID != bookingID.Hex() {
		t.Fatalf("unexpected tickets %+v", u.Tickets)
	}

	empty := (&mongoUser{ID: primitive.NewObjectID()}).toDomain()
	if empty.Tickets == nil {
		t.Fatal("tickets must never be nil")
	}
}

func TestMongoUser_DecodesStoredDocument(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	raw, err := bson.Marshal(bson.M{
		"_id":          primitive.NewObjectID(),
		"userName":     "alice",
		"email":        "alice@x.com",
		"passwordHash": string(hash),
		"role":         "user",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var mu mongoUser
	if err := bson.Unmarshal(raw, &mu); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	u := mu.toDomain()
	if u.Username != "alice" || u.Email != "alice@x.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw123")); err != nil {
		t.Fatalf("stored hash not decoded: %v", err)
	}

	encoded, err := bson.Marshal(mu)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	var back bson.M
	if err := bson.Unmarshal(encoded, &back); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if _, ok := back["passwordHash"]; !ok {
		t.Fatalf("hash must be written as passwordHash, got keys %v", back)
	}
	if _, ok := back["password"]; ok {
		t.Fatal("hash must not be written as password")
	}
}

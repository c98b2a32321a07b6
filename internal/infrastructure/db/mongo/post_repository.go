package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

const collectionPosts = "posts"

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(collectionPosts)}
}

type mongoImage struct {
	URL      string `bson:"url"`
	PublicID string `bson:"public_id"`
}

type mongoPost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	User      primitive.ObjectID `bson:"user"`
	Images    []mongoImage       `bson:"images"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toMongoImages(images []domain.Image) []mongoImage {
	out := make([]mongoImage, 0, len(images))
	for _, img := range images {
		out = append(out, mongoImage{URL: img.URL, PublicID: img.PublicID})
	}
	return out
}

func (mp *mongoPost) toDomain() *domain.Post {
	images := make([]domain.Image, 0, len(mp.Images))
	for _, img := range mp.Images {
		images = append(images, domain.Image{URL: img.URL, PublicID: img.PublicID})
	}
	p := &domain.Post{
		ID:        mp.ID.Hex(),
		Title:     mp.Title,
		Content:   mp.Content,
		Images:    images,
		CreatedAt: mp.CreatedAt.UTC(),
		UpdatedAt: mp.UpdatedAt.UTC(),
	}
	if !mp.User.IsZero() {
		p.UserID = mp.User.Hex()
	}
	return p
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	doc := mongoPost{
		Title:     p.Title,
		Content:   p.Content,
		Images:    toMongoImages(p.Images),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.UserID != "" {
		owner, err := primitive.ObjectIDFromHex(p.UserID)
		if err != nil {
			return fmt.Errorf("%w: invalid owner id", domain.ErrInvalidInput)
		}
		doc.User = owner
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert post: unexpected id type %T", res.InsertedID)
	}
	p.ID = oid.Hex()
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := objectID(id, domain.ErrPostNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoPost
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return mp.toDomain(), nil
}

// List filters by a case-insensitive match on title or content. The search
// term is matched literally.
func (r *PostRepository) List(ctx context.Context, f ports.PostFilter) ([]*domain.Post, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := searchFilter(f.Search)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(f.Page.Skip()).
		SetLimit(int64(f.Page.Size))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoPost
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode posts: %w", err)
	}

	out := make([]*domain.Post, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"title": re},
		bson.M{"content": re},
	}}
}

func (r *PostRepository) Save(ctx context.Context, p *domain.Post) error {
	oid, err := objectID(p.ID, domain.ErrPostNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":     p.Title,
		"content":   p.Content,
		"images":    toMongoImages(p.Images),
		"updatedAt": p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrPostNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}})
	return err
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hbnb/marketplace/internal/core/domain"
)

type ReviewRepository struct {
	col *mongo.Collection
}

type reviewDoc struct {
	ID        string    `bson:"_id"`
	Text      string    `bson:"text"`
	Rating    int       `bson:"rating"`
	UserID    string    `bson:"user_id"`
	PlaceID   string    `bson:"place_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toReviewDoc(r *domain.Review) reviewDoc {
	return reviewDoc{
		ID:        r.ID,
		Text:      r.Text,
		Rating:    r.Rating,
		UserID:    r.AuthorID,
		PlaceID:   r.PlaceID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (d reviewDoc) toDomain() *domain.Review {
	return &domain.Review{
		ID:        d.ID,
		Text:      d.Text,
		Rating:    d.Rating,
		AuthorID:  d.UserID,
		PlaceID:   d.PlaceID,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toReviewDoc(rv)); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": rv.ID}, toReviewDoc(rv))
	if err != nil {
		return fmt.Errorf("replace review: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reviewDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) List(ctx context.Context) ([]*domain.Review, error) {
	return r.find(ctx, bson.M{})
}

func (r *ReviewRepository) ListByPlace(ctx context.Context, placeID string) ([]*domain.Review, error) {
	return r.find(ctx, bson.M{"place_id": placeID})
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Review, error) {
	return r.find(ctx, bson.M{"user_id": authorID})
}

func (r *ReviewRepository) DeleteByPlace(ctx context.Context, placeID string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"place_id": placeID})
}

func (r *ReviewRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"user_id": authorID})
}

func (r *ReviewRepository) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete reviews: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	var docs []reviewDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}

	out := make([]*domain.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

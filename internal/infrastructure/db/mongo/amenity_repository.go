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

type AmenityRepository struct {
	col *mongo.Collection
}

type amenityDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

var amenityConflicts = map[string]error{indexUniqueAmenityName: domain.ErrAmenityExists}

func (d amenityDoc) toDomain() *domain.Amenity {
	return &domain.Amenity{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC()}
}

func toAmenityDoc(a *domain.Amenity) amenityDoc {
	return amenityDoc{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

func (r *AmenityRepository) Create(ctx context.Context, a *domain.Amenity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toAmenityDoc(a)); err != nil {
		if conflict := duplicateKey(err, amenityConflicts); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert amenity: %w", err)
	}
	return nil
}

func (r *AmenityRepository) Update(ctx context.Context, a *domain.Amenity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, toAmenityDoc(a))
	if err != nil {
		if conflict := duplicateKey(err, amenityConflicts); conflict != nil {
			return conflict
		}
		return fmt.Errorf("replace amenity: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAmenityNotFound
	}
	return nil
}

func (r *AmenityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete amenity: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAmenityNotFound
	}
	return nil
}

func (r *AmenityRepository) FindByID(ctx context.Context, id string) (*domain.Amenity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AmenityRepository) FindByName(ctx context.Context, name string) (*domain.Amenity, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *AmenityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Amenity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc amenityDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAmenityNotFound
		}
		return nil, fmt.Errorf("find amenity: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AmenityRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Amenity, error) {
	if len(ids) == 0 {
		return []*domain.Amenity{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *AmenityRepository) List(ctx context.Context) ([]*domain.Amenity, error) {
	return r.find(ctx, bson.M{})
}

func (r *AmenityRepository) find(ctx context.Context, filter bson.M) ([]*domain.Amenity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find amenities: %w", err)
	}
	var docs []amenityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode amenities: %w", err)
	}

	out := make([]*domain.Amenity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

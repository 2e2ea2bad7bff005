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

// PlaceRepository stores places in one collection and their amenity
// associations in place_amenities. Multi-collection writes are atomic, and
// location checks serialized, only when called inside Store.Atomic.
type PlaceRepository struct {
	col   *mongo.Collection
	links *mongo.Collection
	locks *mongo.Collection
}

type placeDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Price       float64   `bson:"price"`
	Latitude    float64   `bson:"latitude"`
	Longitude   float64   `bson:"longitude"`
	LocationKey string    `bson:"location_key"`
	OwnerID     string    `bson:"owner_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type placeAmenityDoc struct {
	PlaceID   string `bson:"place_id"`
	AmenityID string `bson:"amenity_id"`
	Position  int    `bson:"position"`
}

var placeConflicts = map[string]error{indexUniqueLocation: domain.ErrLocationTaken}

func toPlaceDoc(p *domain.Place) placeDoc {
	return placeDoc{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		LocationKey: p.Coordinates().Key(),
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d placeDoc) toDomain(amenityIDs []string) *domain.Place {
	if amenityIDs == nil {
		amenityIDs = []string{}
	}
	return &domain.Place{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		OwnerID:     d.OwnerID,
		AmenityIDs:  amenityIDs,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *PlaceRepository) Create(ctx context.Context, p *domain.Place) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.claimLocation(ctx, p); err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, toPlaceDoc(p)); err != nil {
		if conflict := duplicateKey(err, placeConflicts); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert place: %w", err)
	}
	return r.insertLinks(ctx, p.ID, p.AmenityIDs)
}

func (r *PlaceRepository) Update(ctx context.Context, p *domain.Place) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.claimLocation(ctx, p); err != nil {
		return err
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, toPlaceDoc(p))
	if err != nil {
		if conflict := duplicateKey(err, placeConflicts); conflict != nil {
			return conflict
		}
		return fmt.Errorf("replace place: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPlaceNotFound
	}

	if _, err := r.links.DeleteMany(ctx, bson.M{"place_id": p.ID}); err != nil {
		return fmt.Errorf("clear place amenities: %w", err)
	}
	return r.insertLinks(ctx, p.ID, p.AmenityIDs)
}

// claimLocation writes the location lock document and fails when another
// place lies within tolerance of p. The unique location_key only catches
// places in the same grid cell; neighbours across a cell boundary are caught
// here.
func (r *PlaceRepository) claimLocation(ctx context.Context, p *domain.Place) error {
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"_id": locationLockID},
		bson.M{"$inc": bson.M{"version": int64(1)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("lock place location: %w", err)
	}

	filter := nearFilter(p.Coordinates())
	filter["_id"] = bson.M{"$ne": p.ID}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check place location: %w", err)
	}
	if n > 0 {
		return domain.ErrLocationTaken
	}
	return nil
}

func (r *PlaceRepository) insertLinks(ctx context.Context, placeID string, amenityIDs []string) error {
	if len(amenityIDs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(amenityIDs))
	for i, id := range amenityIDs {
		docs = append(docs, placeAmenityDoc{PlaceID: placeID, AmenityID: id, Position: i})
	}
	if _, err := r.links.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert place amenities: %w", err)
	}
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPlaceNotFound
	}
	if _, err := r.links.DeleteMany(ctx, bson.M{"place_id": id}); err != nil {
		return fmt.Errorf("delete place amenities: %w", err)
	}
	return nil
}

func (r *PlaceRepository) FindByID(ctx context.Context, id string) (*domain.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc placeDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPlaceNotFound
		}
		return nil, fmt.Errorf("find place: %w", err)
	}
	links, err := r.amenityIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(links[id]), nil
}

func (r *PlaceRepository) List(ctx context.Context) ([]*domain.Place, error) {
	return r.find(ctx, bson.M{})
}

func (r *PlaceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Place, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

func (r *PlaceRepository) FindNear(ctx context.Context, c domain.Coordinates) ([]*domain.Place, error) {
	return r.find(ctx, nearFilter(c))
}

func nearFilter(c domain.Coordinates) bson.M {
	return bson.M{
		"latitude":  bson.M{"$gt": c.Latitude - domain.LocationTolerance, "$lt": c.Latitude + domain.LocationTolerance},
		"longitude": bson.M{"$gt": c.Longitude - domain.LocationTolerance, "$lt": c.Longitude + domain.LocationTolerance},
	}
}

func (r *PlaceRepository) RemoveAmenity(ctx context.Context, amenityID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.links.DeleteMany(ctx, bson.M{"amenity_id": amenityID}); err != nil {
		return fmt.Errorf("remove amenity links: %w", err)
	}
	return nil
}

func (r *PlaceRepository) find(ctx context.Context, filter bson.M) ([]*domain.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find places: %w", err)
	}
	var docs []placeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	links, err := r.amenityIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Place, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain(links[d.ID]))
	}
	return out, nil
}

// amenityIDs loads the association rows of placeIDs, grouped by place in
// insertion order.
func (r *PlaceRepository) amenityIDs(ctx context.Context, placeIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "place_id", Value: 1}, {Key: "position", Value: 1}})
	cursor, err := r.links.Find(ctx, bson.M{"place_id": bson.M{"$in": placeIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find place amenities: %w", err)
	}
	var docs []placeAmenityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode place amenities: %w", err)
	}
	for _, d := range docs {
		out[d.PlaceID] = append(out[d.PlaceID], d.AmenityID)
	}
	return out, nil
}

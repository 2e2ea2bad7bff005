package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
)

const (
	collectionUsers          = "users"
	collectionAmenities      = "amenities"
	collectionPlaces         = "places"
	collectionPlaceAmenities = "place_amenities"
	collectionReviews        = "reviews"
	collectionAuditEvents    = "audit_events"
	collectionLocks          = "locks"
)

// locationLockID is the locks document every place location write updates.
// Concurrent transactions writing it conflict, so the driver retries the
// later one after the earlier commits.
const locationLockID = "place_location"

// Unique index names. Duplicate-key errors are mapped back to domain
// conflicts by these names.
const (
	indexUniqueEmail        = "uniq_email"
	indexUniqueUsername     = "uniq_username"
	indexUniqueAmenityName  = "uniq_amenity_name"
	indexUniqueLocation     = "uniq_location"
	indexUniquePlaceAmenity = "uniq_place_amenity"
)

// Store implements ports.Store on MongoDB. Atomic requires a replica set or
// sharded cluster, since it runs a multi-document transaction.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ ports.Store = (*Store)(nil)

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

func (s *Store) Users() ports.UserRepository {
	return &UserRepository{col: s.db.Collection(collectionUsers)}
}

func (s *Store) Amenities() ports.AmenityRepository {
	return &AmenityRepository{col: s.db.Collection(collectionAmenities)}
}

func (s *Store) Places() ports.PlaceRepository {
	return &PlaceRepository{
		col:   s.db.Collection(collectionPlaces),
		links: s.db.Collection(collectionPlaceAmenities),
		locks: s.db.Collection(collectionLocks),
	}
}

func (s *Store) Reviews() ports.ReviewRepository {
	return &ReviewRepository{col: s.db.Collection(collectionReviews)}
}

// Audit returns the repository the audit dispatcher writes to.
func (s *Store) Audit() ports.AuditRepository {
	return &AuditRepository{col: s.db.Collection(collectionAuditEvents)}
}

// Atomic runs fn inside a session transaction. Repository calls made with the
// context passed to fn join the transaction; a nested call joins the
// enclosing one.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx, s)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

// EnsureIndexes creates the unique and lookup indexes of every collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := func(name string, keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
	}
	lookup := func(key string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: key, Value: 1}}}
	}

	indexes := map[string][]mongo.IndexModel{
		collectionUsers: {
			unique(indexUniqueEmail, bson.D{{Key: "email", Value: 1}}),
			unique(indexUniqueUsername, bson.D{{Key: "username", Value: 1}}),
		},
		collectionAmenities: {
			unique(indexUniqueAmenityName, bson.D{{Key: "name", Value: 1}}),
		},
		collectionPlaces: {
			unique(indexUniqueLocation, bson.D{{Key: "location_key", Value: 1}}),
			lookup("owner_id"),
			{Keys: bson.D{{Key: "latitude", Value: 1}, {Key: "longitude", Value: 1}}},
		},
		collectionPlaceAmenities: {
			unique(indexUniquePlaceAmenity, bson.D{{Key: "place_id", Value: 1}, {Key: "amenity_id", Value: 1}}),
			lookup("amenity_id"),
		},
		collectionReviews: {
			lookup("place_id"),
			lookup("user_id"),
		},
		collectionAuditEvents: {
			lookup("subject_id"),
			lookup("at"),
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}

	// Seed the lock document so the first transactions only ever update it.
	_, err := s.db.Collection(collectionLocks).UpdateOne(ctx,
		bson.M{"_id": locationLockID},
		bson.M{"$setOnInsert": bson.M{"version": int64(0)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("seed location lock: %w", err)
	}
	return nil
}

// duplicateKey maps a duplicate-key error to the conflict registered for
// the violated index. It returns nil when err is not a duplicate-key error.
func duplicateKey(err error, byIndex map[string]error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	msg := err.Error()
	for index, conflict := range byIndex {
		if strings.Contains(msg, index) {
			return conflict
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}

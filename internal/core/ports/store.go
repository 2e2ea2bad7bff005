package ports

import (
	"context"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// UserRepository persists users. Create and Update return domain.ErrEmailTaken
// or domain.ErrUsernameTaken when a unique index rejects the write.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail expects an already normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// AmenityRepository persists amenities. Create and Update return
// domain.ErrAmenityExists on a name collision.
type AmenityRepository interface {
	Create(ctx context.Context, amenity *domain.Amenity) error
	Update(ctx context.Context, amenity *domain.Amenity) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Amenity, error)
	FindByName(ctx context.Context, name string) (*domain.Amenity, error)
	// FindByIDs returns the amenities that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Amenity, error)
	List(ctx context.Context) ([]*domain.Amenity, error)
}

// PlaceRepository persists places together with their amenity associations.
// Create and Update return domain.ErrLocationTaken when the location key is
// already used by another place.
type PlaceRepository interface {
	// Create writes the place row and one association row per AmenityIDs entry.
	Create(ctx context.Context, place *domain.Place) error
	// Update rewrites the place row and replaces its associations.
	Update(ctx context.Context, place *domain.Place) error
	// Delete removes the place row and its associations.
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Place, error)
	List(ctx context.Context) ([]*domain.Place, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Place, error)
	// FindNear returns places within domain.LocationTolerance of c.
	FindNear(ctx context.Context, c domain.Coordinates) ([]*domain.Place, error)
	// RemoveAmenity drops amenityID from every place that references it.
	RemoveAmenity(ctx context.Context, amenityID string) error
}

// ReviewRepository persists reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context) ([]*domain.Review, error)
	ListByPlace(ctx context.Context, placeID string) ([]*domain.Review, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Review, error)
	DeleteByPlace(ctx context.Context, placeID string) (int64, error)
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
}

// Store is the record store the core persists through.
type Store interface {
	Users() UserRepository
	Places() PlaceRepository
	Amenities() AmenityRepository
	Reviews() ReviewRepository

	// Atomic runs fn against a transactional view of the store. Every write
	// made through tx commits together when fn returns nil and is rolled back
	// otherwise. The error returned by fn is returned unchanged.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

package ports

import (
	"context"
	"time"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// PlaceInput carries the data needed to list a new place. The owner is
// always the caller.
type PlaceInput struct {
	Title       string
	Description string
	Price       float64
	Latitude    float64
	Longitude   float64
	AmenityIDs  []string
}

// PlacePatch is a partial update; nil fields are left untouched. A non-nil
// AmenityIDs replaces the whole amenity set.
type PlacePatch struct {
	Title       *string
	Description *string
	Price       *float64
	Latitude    *float64
	Longitude   *float64
	AmenityIDs  *[]string
}

// OwnerSummary is the owner block embedded in a place detail.
type OwnerSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// PlaceDetail is the denormalized read model of a place.
type PlaceDetail struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	OwnerID       string        `json:"owner_id"`
	Owner         *OwnerSummary `json:"owner"`
	Amenities     []AmenityView `json:"amenities"`
	Reviews       []ReviewView  `json:"reviews"`
	ReviewCount   int           `json:"review_count"`
	AverageRating float64       `json:"average_rating"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PlaceService owns places and their amenity associations.
type PlaceService interface {
	Create(ctx context.Context, caller domain.Claims, input PlaceInput) (*PlaceDetail, error)
	Update(ctx context.Context, caller domain.Claims, id string, patch PlacePatch) (*PlaceDetail, error)
	Delete(ctx context.Context, caller domain.Claims, id string) error
	Get(ctx context.Context, id string) (*PlaceDetail, error)
	List(ctx context.Context) ([]PlaceDetail, error)
}

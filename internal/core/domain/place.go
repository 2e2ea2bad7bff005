package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength = 100

	// LocationTolerance is the per-axis distance, in degrees, under which two
	// places are considered to be at the same location.
	LocationTolerance = 1e-7
)

// Coordinates represents a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the latitude and longitude bounds.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return Invalid("latitude must be between -90 and 90")
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return Invalid("longitude must be between -180 and 180")
	}
	return nil
}

// Near reports whether c and other fall within LocationTolerance on both axes.
func (c Coordinates) Near(other Coordinates) bool {
	return math.Abs(c.Latitude-other.Latitude) < LocationTolerance &&
		math.Abs(c.Longitude-other.Longitude) < LocationTolerance
}

// Key quantizes c to the tolerance grid. Stores put a unique index on it so
// two concurrent creations at the same point cannot both succeed.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.7f,%.7f", quantize(c.Latitude), quantize(c.Longitude))
}

func quantize(v float64) float64 {
	r := math.Round(v/LocationTolerance) * LocationTolerance
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// PlaceAmenity is the association row linking a place to an amenity.
type PlaceAmenity struct {
	PlaceID   string `json:"place_id"`
	AmenityID string `json:"amenity_id"`
}

// Place is a listing owned by a user with the owner role.
type Place struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	OwnerID     string    `json:"owner_id"`
	AmenityIDs  []string  `json:"amenity_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlaceFields carries the caller-supplied listing fields.
type PlaceFields struct {
	Title       string
	Description string
	Price       float64
	Latitude    float64
	Longitude   float64
}

// NewPlace builds a validated place owned by ownerID.
func NewPlace(id string, f PlaceFields, ownerID string, amenityIDs []string, now time.Time) (*Place, error) {
	p := &Place{
		ID:          id,
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Price:       f.Price,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
		OwnerID:     ownerID,
		AmenityIDs:  amenityIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Coordinates returns the location of p.
func (p *Place) Coordinates() Coordinates {
	return Coordinates{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Validate checks every place invariant that does not need the store.
func (p *Place) Validate() error {
	if p.ID == "" {
		return Invalid("id is required")
	}
	if err := ValidateTitle(p.Title); err != nil {
		return err
	}
	if err := ValidatePrice(p.Price); err != nil {
		return err
	}
	if err := p.Coordinates().Validate(); err != nil {
		return err
	}
	if p.OwnerID == "" {
		return Invalid("owner_id is required")
	}
	return nil
}

// ValidateTitle checks the required, bounded place title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return Invalid("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return Invalid("title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

// ValidatePrice requires a finite, strictly positive price.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return Invalid("price must be greater than 0")
	}
	return nil
}

// NormalizeAmenityIDs trims ids, rejects blanks and drops duplicates while
// keeping the first occurrence order.
func NormalizeAmenityIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, Invalid("amenity id cannot be empty")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

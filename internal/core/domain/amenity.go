package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MaxAmenityNameLength = 50

// Amenity is a feature a place can offer, managed by administrators.
type Amenity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAmenity builds a validated amenity. Surrounding spaces are trimmed from
// the name; the comparison for uniqueness stays case-sensitive.
func NewAmenity(id, name string, now time.Time) (*Amenity, error) {
	name = strings.TrimSpace(name)
	if err := ValidateAmenityName(name); err != nil {
		return nil, err
	}
	return &Amenity{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// ValidateAmenityName checks the required, bounded amenity name.
func ValidateAmenityName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Invalid("name is required")
	}
	if utf8.RuneCountInString(name) > MaxAmenityNameLength {
		return Invalid("name must be at most %d characters", MaxAmenityNameLength)
	}
	return nil
}

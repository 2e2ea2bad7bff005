package domain

import (
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rating left by a user on a place they do not own.
type Review struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	AuthorID  string    `json:"user_id"`
	PlaceID   string    `json:"place_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReview builds a validated review.
func NewReview(id, text string, rating int, authorID, placeID string, now time.Time) (*Review, error) {
	r := &Review{
		ID:        id,
		Text:      strings.TrimSpace(text),
		Rating:    rating,
		AuthorID:  authorID,
		PlaceID:   placeID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks every review invariant that does not need the store.
func (r *Review) Validate() error {
	if r.ID == "" {
		return Invalid("id is required")
	}
	if err := ValidateReviewText(r.Text); err != nil {
		return err
	}
	if err := ValidateRating(r.Rating); err != nil {
		return err
	}
	if r.AuthorID == "" {
		return Invalid("user_id is required")
	}
	if r.PlaceID == "" {
		return Invalid("place_id is required")
	}
	return nil
}

// ValidateReviewText requires non-blank review text.
func ValidateReviewText(text string) error {
	if strings.TrimSpace(text) == "" {
		return Invalid("text is required")
	}
	return nil
}

// ValidateRating requires an integer rating within [MinRating, MaxRating].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return Invalid("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

package ports

import (
	"context"
	"time"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// ReviewInput carries the data needed to review a place. The author is
// always the caller.
type ReviewInput struct {
	PlaceID string
	Text    string
	Rating  int
}

// ReviewPatch is a partial update; nil fields are left untouched.
type ReviewPatch struct {
	Text   *string
	Rating *int
}

// ReviewView is the public representation of a review.
type ReviewView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	UserID    string    `json:"user_id"`
	PlaceID   string    `json:"place_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewService owns reviews.
type ReviewService interface {
	Create(ctx context.Context, caller domain.Claims, input ReviewInput) (*ReviewView, error)
	Update(ctx context.Context, caller domain.Claims, id string, patch ReviewPatch) (*ReviewView, error)
	Delete(ctx context.Context, caller domain.Claims, id string) error
	Get(ctx context.Context, id string) (*ReviewView, error)
	List(ctx context.Context) ([]ReviewView, error)
	ListByPlace(ctx context.Context, placeID string) ([]ReviewView, error)
	ListByUser(ctx context.Context, userID string) ([]ReviewView, error)
}

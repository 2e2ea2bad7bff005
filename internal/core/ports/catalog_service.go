package ports

import (
	"context"
	"time"
)

// AmenityView is the public representation of an amenity.
type AmenityView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AmenityService owns the amenity catalog. Callers authorize administrators
// before invoking the write operations.
type AmenityService interface {
	Create(ctx context.Context, name string) (*AmenityView, error)
	Update(ctx context.Context, id, name string) (*AmenityView, error)
	Get(ctx context.Context, id string) (*AmenityView, error)
	List(ctx context.Context) ([]AmenityView, error)
	Delete(ctx context.Context, id string) error
}

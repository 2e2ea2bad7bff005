package ports

import (
	"context"
	"time"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// RegisterInput carries the data needed to register a new user.
// A blank Role registers a traveler.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
	Role      string
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Username  *string
	Role      *string
	Password  *string
}

// AdminInput describes the administrator account bootstrapped at startup.
type AdminInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

// UserView is the public representation of a user. It never carries the
// password or its hash.
type UserView struct {
	ID        string      `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	IsAdmin   bool        `json:"is_admin"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IdentityService owns user records.
type IdentityService interface {
	Register(ctx context.Context, input RegisterInput) (*UserView, error)
	Authenticate(ctx context.Context, identifier, password string) (domain.Claims, error)
	Get(ctx context.Context, id string) (*UserView, error)
	List(ctx context.Context) ([]UserView, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*UserView, error)
	Delete(ctx context.Context, id string) error
	EnsureAdmin(ctx context.Context, input AdminInput) (*UserView, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	Claims      domain.Claims `json:"claims"`
}

// AuthService exchanges credentials for a bearer token.
type AuthService interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
}

package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Role is the marketplace role a user registers with. Administration is a
// separate flag on the user, not a role.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleTraveler Role = "traveler"
)

const (
	MaxNameLength     = 50
	MinPasswordLength = 6
)

var validate = validator.New()

// ParseRole converts s into a Role, ignoring case and surrounding spaces.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", Invalid("role must be one of: %s, %s", RoleOwner, RoleTraveler)
	}
	return r, nil
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleTraveler
}

// User models a registered marketplace account.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserFields carries the profile fields supplied at registration.
type UserFields struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Role      Role
}

// NewUser builds a validated user. Email is normalized before validation.
func NewUser(id string, f UserFields, passwordHash string, now time.Time) (*User, error) {
	u := &User{
		ID:           id,
		FirstName:    strings.TrimSpace(f.FirstName),
		LastName:     strings.TrimSpace(f.LastName),
		Email:        NormalizeEmail(f.Email),
		Username:     strings.TrimSpace(f.Username),
		PasswordHash: passwordHash,
		Role:         f.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks every user invariant that does not need the store.
func (u *User) Validate() error {
	if u.ID == "" {
		return Invalid("id is required")
	}
	if err := ValidateName("first_name", u.FirstName); err != nil {
		return err
	}
	if err := ValidateName("last_name", u.LastName); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if strings.TrimSpace(u.Username) == "" {
		return Invalid("username is required")
	}
	if !u.Role.Valid() {
		return Invalid("role must be one of: %s, %s", RoleOwner, RoleTraveler)
	}
	if u.PasswordHash == "" {
		return Invalid("password hash is required")
	}
	return nil
}

// ValidateName checks a required person name field.
func ValidateName(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return Invalid("%s is required", field)
	}
	if utf8.RuneCountInString(value) > MaxNameLength {
		return Invalid("%s must be at most %d characters", field, MaxNameLength)
	}
	return nil
}

// ValidateEmail checks that email is present and looks like an address.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return Invalid("email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return Invalid("email must be a valid email")
	}
	return nil
}

// ValidatePassword enforces the password policy on a plaintext password.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return Invalid("password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return Invalid("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// NormalizeEmail lower-cases and trims email; uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

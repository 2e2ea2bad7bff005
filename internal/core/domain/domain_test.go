package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func validUserFields() UserFields {
	return UserFields{
		FirstName: "Alice",
		LastName:  "Martin",
		Email:     "  Alice@X.com ",
		Username:  "alice",
		Role:      RoleOwner,
	}
}

func TestNewUser_NormalizesEmail(t *testing.T) {
	u, err := NewUser("u1", validUserFields(), "hash", testNow)
	if err != nil {
		t.Fatalf("NewUser returned error: %v", err)
	}
	if u.Email != "alice@x.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if !u.CreatedAt.Equal(testNow) || !u.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps not set")
	}
}

func TestNewUser_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *UserFields, hash *string)
	}{
		{"blank first name", func(f *UserFields, _ *string) { f.FirstName = "  " }},
		{"long last name", func(f *UserFields, _ *string) { f.LastName = strings.Repeat("x", MaxNameLength+1) }},
		{"bad email", func(f *UserFields, _ *string) { f.Email = "not-an-email" }},
		{"missing username", func(f *UserFields, _ *string) { f.Username = "" }},
		{"unknown role", func(f *UserFields, _ *string) { f.Role = "admin" }},
		{"missing hash", func(_ *UserFields, h *string) { *h = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validUserFields()
			hash := "hash"
			tc.mutate(&f, &hash)
			if _, err := NewUser("u1", f, hash, testNow); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(" Owner "); err != nil || r != RoleOwner {
		t.Fatalf("expected owner, got %q (%v)", r, err)
	}
	if _, err := ParseRole("admin"); !errors.Is(err, ErrValidation) {
		t.Fatalf("admin is a flag, not a role; got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected short password to fail, got %v", err)
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Errorf("expected six characters to pass, got %v", err)
	}
}

func TestCoordinates_Bounds(t *testing.T) {
	valid := []Coordinates{{-90, -180}, {90, 180}, {0, 0}}
	for _, c := range valid {
		if err := c.Validate(); err != nil {
			t.Errorf("%+v: unexpected error %v", c, err)
		}
	}
	invalid := []Coordinates{{-90.0001, 0}, {90.5, 0}, {0, -180.1}, {0, 181}}
	for _, c := range invalid {
		if err := c.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: expected ErrValidation, got %v", c, err)
		}
	}
}

func TestCoordinates_NearAndKey(t *testing.T) {
	a := Coordinates{Latitude: 10.0, Longitude: 20.0}
	b := Coordinates{Latitude: 10.00000001, Longitude: 20.0}
	c := Coordinates{Latitude: 10.001, Longitude: 20.0}

	if !a.Near(b) {
		t.Errorf("expected %+v near %+v", a, b)
	}
	if a.Near(c) {
		t.Errorf("expected %+v not near %+v", a, c)
	}
	if a.Key() != b.Key() {
		t.Errorf("expected equal keys, got %q and %q", a.Key(), b.Key())
	}
	if got := (Coordinates{Latitude: -0.00000001, Longitude: 0}).Key(); got != "0.0000000,0.0000000" {
		t.Errorf("negative zero leaked into key: %q", got)
	}
}

func TestNewPlace_Validation(t *testing.T) {
	base := PlaceFields{Title: "Loft", Price: 100, Latitude: 10, Longitude: 20}

	if _, err := NewPlace("p1", base, "owner", nil, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]PlaceFields{
		"blank title": {Title: " ", Price: 100},
		"long title":  {Title: strings.Repeat("t", MaxTitleLength+1), Price: 100},
		"zero price":  {Title: "Loft", Price: 0},
		"bad lat":     {Title: "Loft", Price: 1, Latitude: 91},
	}
	for name, f := range cases {
		if _, err := NewPlace("p1", f, "owner", nil, testNow); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestNormalizeAmenityIDs(t *testing.T) {
	ids, err := NormalizeAmenityIDs([]string{"b", " a ", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Errorf("unexpected ids: %v", ids)
	}
	if _, err := NormalizeAmenityIDs([]string{"a", ""}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected blank id to fail, got %v", err)
	}
}

func TestNewAmenity(t *testing.T) {
	a, err := NewAmenity("a1", "  Wifi ", testNow)
	if err != nil || a.Name != "Wifi" {
		t.Fatalf("unexpected amenity %+v (%v)", a, err)
	}
	if _, err := NewAmenity("a1", strings.Repeat("w", MaxAmenityNameLength+1), testNow); !errors.Is(err, ErrValidation) {
		t.Errorf("expected long name to fail, got %v", err)
	}
	if _, err := NewAmenity("a1", strings.Repeat("w", MaxAmenityNameLength), testNow); err != nil {
		t.Errorf("expected name at the limit to pass, got %v", err)
	}
}

func TestValidateRating_Boundaries(t *testing.T) {
	for r := -1; r <= 7; r++ {
		err := ValidateRating(r)
		inRange := r >= MinRating && r <= MaxRating
		if inRange && err != nil {
			t.Errorf("rating %d: unexpected error %v", r, err)
		}
		if !inRange && !errors.Is(err, ErrValidation) {
			t.Errorf("rating %d: expected ErrValidation, got %v", r, err)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	cases := map[error]error{
		ErrEmailTaken:         ErrConflict,
		ErrLocationTaken:      ErrConflict,
		ErrSelfReview:         ErrPermission,
		ErrPlaceNotFound:      ErrNotFound,
		ErrInvalidCredentials: ErrAuthentication,
		Invalid("x"):          ErrValidation,
		Denied("x"):           ErrPermission,
	}
	for err, kind := range cases {
		if !errors.Is(err, kind) {
			t.Errorf("%v: expected to wrap %v", err, kind)
		}
	}
}

func TestStorageFailure(t *testing.T) {
	if StorageFailure("op", nil) != nil {
		t.Error("nil error must stay nil")
	}
	if err := StorageFailure("op", ErrUserNotFound); !errors.Is(err, ErrNotFound) || errors.Is(err, ErrStorage) {
		t.Errorf("domain errors must pass through, got %v", err)
	}
	raw := errors.New("disk on fire")
	err := StorageFailure("delete user", raw)
	if !errors.Is(err, ErrStorage) || !errors.Is(err, raw) {
		t.Errorf("expected storage failure wrapping cause, got %v", err)
	}
}

package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/policy"
)

func TestAuthorize(t *testing.T) {
	admin := domain.Claims{SubjectID: "a1", Role: domain.RoleOwner, IsAdmin: true}
	traveler := domain.Claims{SubjectID: "t1", Role: domain.RoleTraveler}

	tests := []struct {
		name   string
		claims *domain.Claims
		op     policy.Operation
		want   error
	}{
		{"admin creates amenity", &admin, policy.AmenityCreate, nil},
		{"traveler creates amenity", &traveler, policy.AmenityCreate, domain.ErrPermission},
		{"traveler lists users", &traveler, policy.UserList, domain.ErrPermission},
		{"no claims", nil, policy.AmenityCreate, domain.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("")
			if tt.claims != nil {
				c.Set(ClaimsKey, *tt.claims)
			}
			called := false
			handler := Authorize(tt.op)(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})

			err := handler(c)
			if tt.want == nil {
				if err != nil || !called || rec.Code != http.StatusOK {
					t.Fatalf("expected pass-through, got err=%v called=%v code=%d", err, called, rec.Code)
				}
				return
			}
			if !errors.Is(err, tt.want) || called {
				t.Fatalf("expected %v without calling next, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthorizeSelf(t *testing.T) {
	traveler := domain.Claims{SubjectID: "t1", Role: domain.RoleTraveler}

	for _, tc := range []struct {
		id   string
		want error
	}{
		{"t1", nil},
		{"someone-else", domain.ErrPermission},
	} {
		c, _ := newContext("")
		c.Set(ClaimsKey, traveler)
		c.SetParamNames("id")
		c.SetParamValues(tc.id)

		err := AuthorizeSelf(policy.UserUpdate, "id")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		if !errors.Is(err, tc.want) {
			t.Fatalf("id %s: expected %v, got %v", tc.id, tc.want, err)
		}
	}
}

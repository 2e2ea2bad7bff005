package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/core/service"
	"github.com/hbnb/marketplace/internal/infrastructure/crypto"
	"github.com/hbnb/marketplace/internal/infrastructure/db/memory"
	"github.com/hbnb/marketplace/internal/infrastructure/token"
)

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	store := memory.New()
	jwt, err := token.NewJWT("router-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	identity := service.NewIdentityService(store, crypto.NewBcryptHasher(bcrypt.MinCost), nil, log)
	if _, err := identity.EnsureAdmin(t.Context(), ports.AdminInput{
		FirstName: "Root", LastName: "Admin", Email: "admin@example.com", Username: "admin", Password: "admin1234",
	}); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	e := NewRouter(Deps{
		Identity:  identity,
		Auth:      service.NewAuthService(identity, jwt, nil, log),
		Amenities: service.NewAmenityService(store, nil, log),
		Places:    service.NewPlaceService(store, nil, log),
		Reviews:   service.NewReviewService(store, nil, log),
		Verifier:  jwt,
		Registry:  prometheus.NewRegistry(),
		Log:       log,
	})
	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, token, body string) (int, map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			s.t.Fatalf("%s %s: invalid json: %v", method, path, err)
		}
	}
	return rec.Code, out
}

func (s *testServer) expect(want int, method, path, token, body string) map[string]any {
	s.t.Helper()
	code, out := s.do(method, path, token, body)
	if code != want {
		s.t.Fatalf("%s %s: expected %d, got %d: %v", method, path, want, code, out)
	}
	return out
}

func (s *testServer) register(username, role string) string {
	s.t.Helper()
	out := s.expect(http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "",
		`{"first_name":"`+username+`","last_name":"Test","email":"`+username+`@example.com","username":"`+username+`","password":"secret1","role":"`+role+`"}`)
	return out["id"].(string)
}

func (s *testServer) login(identifier, password string) string {
	s.t.Helper()
	out := s.expect(http.StatusOK, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"`+identifier+`","password":"`+password+`"}`)
	return out["access_token"].(string)
}

func TestRouter_MarketplaceFlow(t *testing.T) {
	s := newTestServer(t)

	aliceID := s.register("alice", "owner")
	s.register("bob", "traveler")
	alice := s.login("alice@example.com", "secret1")
	bob := s.login("bob@example.com", "secret1")
	admin := s.login("admin@example.com", "admin1234")

	// Only administrators manage the catalog.
	s.expect(http.StatusForbidden, http.MethodPost, "/api/v1/amenities", alice, `{"name":"Wifi"}`)
	wifi := s.expect(http.StatusCreated, http.MethodPost, "/api/v1/amenities", admin, `{"name":"Wifi"}`)
	s.expect(http.StatusConflict, http.MethodPost, "/api/v1/amenities", admin, `{"name":"Wifi"}`)

	// Listing requires the owner role.
	place := `{"title":"Cozy loft","price":80,"latitude":48.85,"longitude":2.35,"amenities":["` + wifi["id"].(string) + `"]}`
	s.expect(http.StatusUnauthorized, http.MethodPost, "/api/v1/places", "", place)
	s.expect(http.StatusForbidden, http.MethodPost, "/api/v1/places", bob, place)
	created := s.expect(http.StatusCreated, http.MethodPost, "/api/v1/places", alice, place)
	placeID := created["id"].(string)
	if created["owner_id"] != aliceID {
		t.Fatalf("expected alice to own the place, got %v", created["owner_id"])
	}
	s.expect(http.StatusConflict, http.MethodPost, "/api/v1/places", alice,
		`{"title":"Same spot","price":50,"latitude":48.85,"longitude":2.35}`)
	s.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/places", alice,
		`{"title":"  ","price":50,"latitude":1,"longitude":1}`)

	// Reviews: travelers may review, owners may not review their own place.
	review := `{"place_id":"` + placeID + `","text":"Great stay","rating":5}`
	s.expect(http.StatusForbidden, http.MethodPost, "/api/v1/reviews", alice, review)
	s.expect(http.StatusCreated, http.MethodPost, "/api/v1/reviews", bob, review)
	s.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/reviews", bob,
		`{"place_id":"`+placeID+`","text":"Too good","rating":6}`)

	detail := s.expect(http.StatusOK, http.MethodGet, "/api/v1/places/"+placeID, "", "")
	if detail["review_count"] != float64(1) || detail["average_rating"] != float64(5) {
		t.Fatalf("unexpected review summary: %v", detail)
	}
	if amenities := detail["amenities"].([]any); len(amenities) != 1 {
		t.Fatalf("expected one amenity, got %v", amenities)
	}

	// User administration.
	s.expect(http.StatusForbidden, http.MethodGet, "/api/v1/users", bob, "")
	s.expect(http.StatusOK, http.MethodGet, "/api/v1/users", admin, "")
	s.expect(http.StatusForbidden, http.MethodPut, "/api/v1/users/"+aliceID, bob, `{"first_name":"Mallory"}`)
	s.expect(http.StatusOK, http.MethodPut, "/api/v1/users/"+aliceID, alice, `{"first_name":"Alicia"}`)
	s.expect(http.StatusForbidden, http.MethodDelete, "/api/v1/users/"+aliceID, alice, "")

	// Deleting the owner removes the listing and its reviews.
	s.expect(http.StatusOK, http.MethodDelete, "/api/v1/users/"+aliceID, admin, "")
	s.expect(http.StatusNotFound, http.MethodGet, "/api/v1/places/"+placeID, "", "")
	s.expect(http.StatusNotFound, http.MethodGet, "/api/v1/places/"+placeID+"/reviews", "", "")
	s.expect(http.StatusNotFound, http.MethodDelete, "/api/v1/users/"+aliceID, admin, "")
}

func TestRouter_AuthFailures(t *testing.T) {
	s := newTestServer(t)
	s.register("carol", "traveler")

	s.expect(http.StatusUnauthorized, http.MethodPost, "/api/v1/auth/login", "", `{"email":"carol@example.com","password":"wrong-pass"}`)
	s.expect(http.StatusUnauthorized, http.MethodPost, "/api/v1/reviews", "not-a-token", `{}`)
	s.expect(http.StatusUnprocessableEntity, http.MethodPost, "/api/v1/auth/login", "", `{"email":"carol@example.com"}`)
	s.expect(http.StatusConflict, http.MethodPost, "/api/v1/auth/register", "",
		`{"first_name":"C","last_name":"D","email":"CAROL@example.com","username":"carol2","password":"secret1"}`)
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	s.expect(http.StatusOK, http.MethodGet, "/health", "", "")
	s.expect(http.StatusOK, http.MethodGet, "/health/ready", "", "")
	s.expect(http.StatusOK, http.MethodGet, "/api/v1/amenities", "", "")

	code, _ := s.do(http.MethodGet, "/metrics", "", "")
	if code != http.StatusOK {
		t.Fatalf("expected metrics to be served, got %d", code)
	}
	code, _ = s.do(http.MethodGet, "/api/v1/nowhere", "", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

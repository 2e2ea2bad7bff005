package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// stubHasher keeps tests fast; bcrypt itself is covered in the crypto package.
type stubHasher struct{}

func (stubHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (stubHasher) Verify(p, digest string) bool { return digest == "hashed:"+p }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (p *recordingPublisher) Publish(e domain.AuditEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) actions() []domain.AuditAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

// Repository steps faultyStore can fail.
const (
	failDeleteByAuthor = "reviews.DeleteByAuthor"
	failPlaceDelete    = "places.Delete"
	failAmenityDelete  = "amenities.Delete"
)

// faultyStore fails one repository step inside Atomic, after earlier steps of
// the unit have already written.
type faultyStore struct {
	*memory.Store
	step string
	err  error
}

func (f *faultyStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	return f.Store.Atomic(ctx, func(ctx context.Context, tx ports.Store) error {
		return fn(ctx, faultyTx{Store: tx, step: f.step, err: f.err})
	})
}

type faultyTx struct {
	ports.Store
	step string
	err  error
}

func (t faultyTx) Reviews() ports.ReviewRepository {
	return faultyReviews{ReviewRepository: t.Store.Reviews(), step: t.step, err: t.err}
}

func (t faultyTx) Places() ports.PlaceRepository {
	return faultyPlaces{PlaceRepository: t.Store.Places(), step: t.step, err: t.err}
}

func (t faultyTx) Amenities() ports.AmenityRepository {
	return faultyAmenities{AmenityRepository: t.Store.Amenities(), step: t.step, err: t.err}
}

type faultyReviews struct {
	ports.ReviewRepository
	step string
	err  error
}

func (r faultyReviews) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	if r.step == failDeleteByAuthor {
		return 0, r.err
	}
	return r.ReviewRepository.DeleteByAuthor(ctx, authorID)
}

type faultyPlaces struct {
	ports.PlaceRepository
	step string
	err  error
}

func (r faultyPlaces) Delete(ctx context.Context, id string) error {
	if r.step == failPlaceDelete {
		return r.err
	}
	return r.PlaceRepository.Delete(ctx, id)
}

type faultyAmenities struct {
	ports.AmenityRepository
	step string
	err  error
}

func (r faultyAmenities) Delete(ctx context.Context, id string) error {
	if r.step == failAmenityDelete {
		return r.err
	}
	return r.AmenityRepository.Delete(ctx, id)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	ctx       context.Context
	store     ports.Store
	audit     *recordingPublisher
	identity  ports.IdentityService
	amenities ports.AmenityService
	places    ports.PlaceService
	reviews   ports.ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.New())
}

func newFixtureWithStore(t *testing.T, store ports.Store) *fixture {
	t.Helper()
	log := zerolog.Nop()
	audit := &recordingPublisher{}
	return &fixture{
		ctx:       context.Background(),
		store:     store,
		audit:     audit,
		identity:  NewIdentityService(store, stubHasher{}, audit, log),
		amenities: NewAmenityService(store, audit, log),
		places:    NewPlaceService(store, audit, log),
		reviews:   NewReviewService(store, audit, log),
	}
}

func claimsOf(u *ports.UserView) domain.Claims {
	return domain.Claims{SubjectID: u.ID, Role: u.Role, IsAdmin: u.IsAdmin}
}

// register creates a user named username with role and returns its claims.
func (f *fixture) register(t *testing.T, username string, role domain.Role) domain.Claims {
	t.Helper()
	u, err := f.identity.Register(f.ctx, ports.RegisterInput{
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Tester",
		Email:     username + "@example.com",
		Username:  username,
		Password:  "secret1",
		Role:      string(role),
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return claimsOf(u)
}

func (f *fixture) admin(t *testing.T) domain.Claims {
	t.Helper()
	u, err := f.identity.EnsureAdmin(f.ctx, ports.AdminInput{
		FirstName: "Admin", LastName: "User", Email: "admin@example.com", Username: "admin", Password: "admin1234",
	})
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return claimsOf(u)
}

func (f *fixture) amenity(t *testing.T, name string) string {
	t.Helper()
	a, err := f.amenities.Create(f.ctx, name)
	if err != nil {
		t.Fatalf("create amenity %s: %v", name, err)
	}
	return a.ID
}

func (f *fixture) place(t *testing.T, owner domain.Claims, lat, lng float64, amenityIDs ...string) *ports.PlaceDetail {
	t.Helper()
	p, err := f.places.Create(f.ctx, owner, ports.PlaceInput{
		Title: "Cozy loft", Description: "near the park", Price: 80,
		Latitude: lat, Longitude: lng, AmenityIDs: amenityIDs,
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	return p
}

func (f *fixture) review(t *testing.T, author domain.Claims, placeID string, rating int) *ports.ReviewView {
	t.Helper()
	r, err := f.reviews.Create(f.ctx, author, ports.ReviewInput{PlaceID: placeID, Text: "lovely stay", Rating: rating})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	return r
}

func ptr[T any](v T) *T { return &v }

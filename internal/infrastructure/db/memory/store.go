// Package memory implements ports.Store over in-process maps. It enforces the
// same uniqueness rules as the database-backed stores and is used for local
// development and tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
)

type state struct {
	users     map[string]domain.User
	amenities map[string]domain.Amenity
	places    map[string]domain.Place
	// links holds the place_amenities association rows, per place, in
	// insertion order.
	links   map[string][]string
	reviews map[string]domain.Review
}

func newState() *state {
	return &state{
		users:     make(map[string]domain.User),
		amenities: make(map[string]domain.Amenity),
		places:    make(map[string]domain.Place),
		links:     make(map[string][]string),
		reviews:   make(map[string]domain.Review),
	}
}

func (st *state) clone() *state {
	links := make(map[string][]string, len(st.links))
	for id, ids := range st.links {
		links[id] = slices.Clone(ids)
	}
	return &state{
		users:     maps.Clone(st.users),
		amenities: maps.Clone(st.amenities),
		places:    maps.Clone(st.places),
		links:     links,
		reviews:   maps.Clone(st.reviews),
	}
}

// Store is a ports.Store guarded by one coarse lock. Atomic holds the lock for
// the whole unit of work and restores a snapshot when it fails or panics.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ ports.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) Users() ports.UserRepository { return &userRepo{view{s, false}} }
func (s *Store) Places() ports.PlaceRepository { return &placeRepo{view{s, false}} }
func (s *Store) Amenities() ports.AmenityRepository { return &amenityRepo{view{s, false}} }
func (s *Store) Reviews() ports.ReviewRepository { return &reviewRepo{view{s, false}} }

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view{s, true}.atomic(ctx, fn)
}

// view is the store as seen by a repository. Inside Atomic the lock is
// already held, so inTx views do not take it again.
type view struct {
	s    *Store
	inTx bool
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (v view) atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := v.s.st.clone()
	committed := false
	// Restores on error and on panic.
	defer func() {
		if !committed {
			v.s.st = snapshot
		}
	}()
	if err := fn(ctx, txStore{v.s}); err != nil {
		return err
	}
	committed = true
	return nil
}

// txStore is the transactional view handed to Atomic callbacks. Nested
// Atomic calls join the enclosing unit.
type txStore struct{ s *Store }

func (t txStore) Users() ports.UserRepository { return &userRepo{view{t.s, true}} }
func (t txStore) Places() ports.PlaceRepository { return &placeRepo{view{t.s, true}} }
func (t txStore) Amenities() ports.AmenityRepository { return &amenityRepo{view{t.s, true}} }
func (t txStore) Reviews() ports.ReviewRepository { return &reviewRepo{view{t.s, true}} }

func (t txStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	return fn(ctx, t)
}

// ── users ─────────────────────────────────────────────────────────────────────

type userRepo struct{ view }

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	defer r.lock()()
	st := r.s.st
	if _, exists := st.users[u.ID]; exists {
		return domain.Invalid("user %s already exists", u.ID)
	}
	if err := st.userConflict(u); err != nil {
		return err
	}
	st.users[u.ID] = *u
	return nil
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	defer r.lock()()
	st := r.s.st
	if _, ok := st.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := st.userConflict(u); err != nil {
		return err
	}
	st.users[u.ID] = *u
	return nil
}

func (st *state) userConflict(u *domain.User) error {
	for id, other := range st.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return domain.ErrEmailTaken
		}
		if other.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	return nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.s.st.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.st.users, id)
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	defer r.lock()()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	defer r.lock()()
	for _, u := range r.s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	defer r.lock()()
	for _, u := range r.s.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) List(_ context.Context) ([]*domain.User, error) {
	defer r.lock()()
	out := make([]*domain.User, 0, len(r.s.st.users))
	for _, u := range r.s.st.users {
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return created(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, nil
}

// ── amenities ─────────────────────────────────────────────────────────────────

type amenityRepo struct{ view }

func (r *amenityRepo) Create(_ context.Context, a *domain.Amenity) error {
	defer r.lock()()
	st := r.s.st
	if _, exists := st.amenities[a.ID]; exists {
		return domain.Invalid("amenity %s already exists", a.ID)
	}
	if st.amenityNameTaken(a) {
		return domain.ErrAmenityExists
	}
	st.amenities[a.ID] = *a
	return nil
}

func (r *amenityRepo) Update(_ context.Context, a *domain.Amenity) error {
	defer r.lock()()
	st := r.s.st
	if _, ok := st.amenities[a.ID]; !ok {
		return domain.ErrAmenityNotFound
	}
	if st.amenityNameTaken(a) {
		return domain.ErrAmenityExists
	}
	st.amenities[a.ID] = *a
	return nil
}

func (st *state) amenityNameTaken(a *domain.Amenity) bool {
	for id, other := range st.amenities {
		if id != a.ID && other.Name == a.Name {
			return true
		}
	}
	return false
}

func (r *amenityRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.s.st.amenities[id]; !ok {
		return domain.ErrAmenityNotFound
	}
	delete(r.s.st.amenities, id)
	return nil
}

func (r *amenityRepo) FindByID(_ context.Context, id string) (*domain.Amenity, error) {
	defer r.lock()()
	a, ok := r.s.st.amenities[id]
	if !ok {
		return nil, domain.ErrAmenityNotFound
	}
	return &a, nil
}

func (r *amenityRepo) FindByName(_ context.Context, name string) (*domain.Amenity, error) {
	defer r.lock()()
	for _, a := range r.s.st.amenities {
		if a.Name == name {
			return &a, nil
		}
	}
	return nil, domain.ErrAmenityNotFound
}

func (r *amenityRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Amenity, error) {
	defer r.lock()()
	out := make([]*domain.Amenity, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.s.st.amenities[id]; ok {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *amenityRepo) List(_ context.Context) ([]*domain.Amenity, error) {
	defer r.lock()()
	out := make([]*domain.Amenity, 0, len(r.s.st.amenities))
	for _, a := range r.s.st.amenities {
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── places ────────────────────────────────────────────────────────────────────

type placeRepo struct{ view }

func (r *placeRepo) Create(_ context.Context, p *domain.Place) error {
	defer r.lock()()
	st := r.s.st
	if _, exists := st.places[p.ID]; exists {
		return domain.Invalid("place %s already exists", p.ID)
	}
	if st.locationTaken(p) {
		return domain.ErrLocationTaken
	}
	st.putPlace(p)
	return nil
}

func (r *placeRepo) Update(_ context.Context, p *domain.Place) error {
	defer r.lock()()
	st := r.s.st
	if _, ok := st.places[p.ID]; !ok {
		return domain.ErrPlaceNotFound
	}
	if st.locationTaken(p) {
		return domain.ErrLocationTaken
	}
	st.putPlace(p)
	return nil
}

// locationTaken reports whether another place lies within tolerance of p or
// shares its grid cell. Callers hold the store lock, so the check and the
// write that follows are serialized.
func (st *state) locationTaken(p *domain.Place) bool {
	c := p.Coordinates()
	key := c.Key()
	for id, other := range st.places {
		if id == p.ID {
			continue
		}
		oc := other.Coordinates()
		if oc.Near(c) || oc.Key() == key {
			return true
		}
	}
	return false
}

func (st *state) putPlace(p *domain.Place) {
	row := *p
	row.AmenityIDs = nil
	st.places[p.ID] = row
	st.links[p.ID] = slices.Clone(p.AmenityIDs)
}

func (st *state) place(id string) (*domain.Place, bool) {
	p, ok := st.places[id]
	if !ok {
		return nil, false
	}
	p.AmenityIDs = slices.Clone(st.links[id])
	if p.AmenityIDs == nil {
		p.AmenityIDs = []string{}
	}
	return &p, true
}

func (r *placeRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.s.st.places[id]; !ok {
		return domain.ErrPlaceNotFound
	}
	delete(r.s.st.places, id)
	delete(r.s.st.links, id)
	return nil
}

func (r *placeRepo) FindByID(_ context.Context, id string) (*domain.Place, error) {
	defer r.lock()()
	p, ok := r.s.st.place(id)
	if !ok {
		return nil, domain.ErrPlaceNotFound
	}
	return p, nil
}

func (r *placeRepo) List(_ context.Context) ([]*domain.Place, error) {
	defer r.lock()()
	return r.s.st.filterPlaces(func(domain.Place) bool { return true }), nil
}

func (r *placeRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Place, error) {
	defer r.lock()()
	return r.s.st.filterPlaces(func(p domain.Place) bool { return p.OwnerID == ownerID }), nil
}

func (r *placeRepo) FindNear(_ context.Context, c domain.Coordinates) ([]*domain.Place, error) {
	defer r.lock()()
	return r.s.st.filterPlaces(func(p domain.Place) bool { return p.Coordinates().Near(c) }), nil
}

func (st *state) filterPlaces(keep func(domain.Place) bool) []*domain.Place {
	out := make([]*domain.Place, 0)
	for id, row := range st.places {
		if !keep(row) {
			continue
		}
		p, _ := st.place(id)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return created(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out
}

func (r *placeRepo) RemoveAmenity(_ context.Context, amenityID string) error {
	defer r.lock()()
	for placeID, ids := range r.s.st.links {
		r.s.st.links[placeID] = slices.DeleteFunc(ids, func(id string) bool { return id == amenityID })
	}
	return nil
}

// ── reviews ───────────────────────────────────────────────────────────────────

type reviewRepo struct{ view }

func (r *reviewRepo) Create(_ context.Context, rv *domain.Review) error {
	defer r.lock()()
	if _, exists := r.s.st.reviews[rv.ID]; exists {
		return domain.Invalid("review %s already exists", rv.ID)
	}
	r.s.st.reviews[rv.ID] = *rv
	return nil
}

func (r *reviewRepo) Update(_ context.Context, rv *domain.Review) error {
	defer r.lock()()
	if _, ok := r.s.st.reviews[rv.ID]; !ok {
		return domain.ErrReviewNotFound
	}
	r.s.st.reviews[rv.ID] = *rv
	return nil
}

func (r *reviewRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.s.st.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(r.s.st.reviews, id)
	return nil
}

func (r *reviewRepo) FindByID(_ context.Context, id string) (*domain.Review, error) {
	defer r.lock()()
	rv, ok := r.s.st.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	return &rv, nil
}

func (r *reviewRepo) List(_ context.Context) ([]*domain.Review, error) {
	defer r.lock()()
	return r.s.st.filterReviews(func(domain.Review) bool { return true }), nil
}

func (r *reviewRepo) ListByPlace(_ context.Context, placeID string) ([]*domain.Review, error) {
	defer r.lock()()
	return r.s.st.filterReviews(func(rv domain.Review) bool { return rv.PlaceID == placeID }), nil
}

func (r *reviewRepo) ListByAuthor(_ context.Context, authorID string) ([]*domain.Review, error) {
	defer r.lock()()
	return r.s.st.filterReviews(func(rv domain.Review) bool { return rv.AuthorID == authorID }), nil
}

func (r *reviewRepo) DeleteByPlace(_ context.Context, placeID string) (int64, error) {
	defer r.lock()()
	return r.s.st.deleteReviews(func(rv domain.Review) bool { return rv.PlaceID == placeID }), nil
}

func (r *reviewRepo) DeleteByAuthor(_ context.Context, authorID string) (int64, error) {
	defer r.lock()()
	return r.s.st.deleteReviews(func(rv domain.Review) bool { return rv.AuthorID == authorID }), nil
}

func (st *state) filterReviews(keep func(domain.Review) bool) []*domain.Review {
	out := make([]*domain.Review, 0)
	for _, rv := range st.reviews {
		if keep(rv) {
			out = append(out, &rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return created(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out
}

func (st *state) deleteReviews(match func(domain.Review) bool) int64 {
	var n int64
	for id, rv := range st.reviews {
		if match(rv) {
			delete(st.reviews, id)
			n++
		}
	}
	return n
}

// created orders records by creation time, then id.
func created(at1 time.Time, id1 string, at2 time.Time, id2 string) bool {
	if !at1.Equal(at2) {
		return at1.Before(at2)
	}
	return id1 < id2
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/policy"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/metrics"
)

// listConcurrency bounds the number of place details assembled at once.
const listConcurrency = 8

type placeService struct {
	store ports.Store
	audit auditor
	log   zerolog.Logger
}

// NewPlaceService returns a PlaceService backed by store.
func NewPlaceService(store ports.Store, audit ports.AuditPublisher, log zerolog.Logger) ports.PlaceService {
	return &placeService{store: store, audit: auditor{audit}, log: log}
}

// Create lists a new place owned by the caller.
func (s *placeService) Create(ctx context.Context, caller domain.Claims, in ports.PlaceInput) (*ports.PlaceDetail, error) {
	if err := policy.Authorize(caller, policy.PlaceCreate, policy.Resource{}); err != nil {
		return nil, err
	}

	amenityIDs, err := domain.NormalizeAmenityIDs(in.AmenityIDs)
	if err != nil {
		return nil, err
	}
	place, err := domain.NewPlace(newID(), domain.PlaceFields{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}, caller.SubjectID, amenityIDs, now())
	if err != nil {
		return nil, err
	}

	owner, err := s.store.Users().FindByID(ctx, caller.SubjectID)
	if isNotFound(err) {
		return nil, domain.Invalid("owner not found: %s", caller.SubjectID)
	}
	if err != nil {
		return nil, domain.StorageFailure("find owner", err)
	}
	if owner.Role != domain.RoleOwner {
		return nil, domain.Denied("user %s does not hold the owner role", owner.ID)
	}

	if err := s.resolveAmenities(ctx, amenityIDs); err != nil {
		return nil, err
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tx ports.Store) error {
		if err := checkLocation(ctx, tx, "", place.Coordinates()); err != nil {
			return err
		}
		return tx.Places().Create(ctx, place)
	})
	if err != nil {
		return nil, domain.StorageFailure("create place", err)
	}

	metrics.PlacesCreatedTotal.Inc()
	s.audit.record(ctx, domain.AuditPlaceCreated, place.ID, map[string]string{"owner_id": place.OwnerID})
	s.log.Info().Str("place_id", place.ID).Str("owner_id", place.OwnerID).Msg("place created")

	return s.detail(ctx, place)
}

// Update applies the non-nil fields of patch. A non-nil AmenityIDs replaces
// the whole amenity set.
func (s *placeService) Update(ctx context.Context, caller domain.Claims, id string, patch ports.PlacePatch) (*ports.PlaceDetail, error) {
	place, err := s.store.Places().FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("find place", err)
	}
	if err := policy.Authorize(caller, policy.PlaceUpdate, policy.Owned(place.OwnerID)); err != nil {
		return nil, err
	}

	before := place.Coordinates()
	if patch.Title != nil {
		place.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		place.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		place.Price = *patch.Price
	}
	if patch.Latitude != nil {
		place.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		place.Longitude = *patch.Longitude
	}
	if patch.AmenityIDs != nil {
		ids, err := domain.NormalizeAmenityIDs(*patch.AmenityIDs)
		if err != nil {
			return nil, err
		}
		place.AmenityIDs = ids
	}
	if err := place.Validate(); err != nil {
		return nil, err
	}

	if patch.AmenityIDs != nil {
		if err := s.resolveAmenities(ctx, place.AmenityIDs); err != nil {
			return nil, err
		}
	}

	moved := place.Coordinates() != before
	place.UpdatedAt = now()
	err = s.store.Atomic(ctx, func(ctx context.Context, tx ports.Store) error {
		if moved {
			if err := checkLocation(ctx, tx, place.ID, place.Coordinates()); err != nil {
				return err
			}
		}
		return tx.Places().Update(ctx, place)
	})
	if err != nil {
		return nil, domain.StorageFailure("update place", err)
	}

	s.audit.record(ctx, domain.AuditPlaceUpdated, place.ID, nil)
	s.log.Info().Str("place_id", place.ID).Msg("place updated")
	return s.detail(ctx, place)
}

// Delete removes the place with its reviews and amenity links, atomically.
func (s *placeService) Delete(ctx context.Context, caller domain.Claims, id string) error {
	place, err := s.store.Places().FindByID(ctx, id)
	if err != nil {
		return domain.StorageFailure("find place", err)
	}
	if err := policy.Authorize(caller, policy.PlaceDelete, policy.Owned(place.OwnerID)); err != nil {
		return err
	}

	start := time.Now()
	var reviewsDeleted int64
	err = s.store.Atomic(ctx, func(ctx context.Context, tx ports.Store) error {
		n, err := tx.Reviews().DeleteByPlace(ctx, id)
		if err != nil {
			return domain.CascadeFailure("delete place reviews", err)
		}
		reviewsDeleted = n
		if err := tx.Places().Delete(ctx, id); err != nil {
			return domain.CascadeFailure("delete place", err)
		}
		return nil
	})
	if err != nil && !domain.IsDomainError(err) {
		err = domain.CascadeFailure("commit", err)
	}
	observeCascade(s.log, "place", id, start, err)
	if err != nil {
		return err
	}

	s.audit.record(ctx, domain.AuditPlaceDeleted, id, nil)
	s.log.Info().Str("place_id", id).Int64("reviews_deleted", reviewsDeleted).Msg("place deleted")
	return nil
}

func (s *placeService) Get(ctx context.Context, id string) (*ports.PlaceDetail, error) {
	place, err := s.store.Places().FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("find place", err)
	}
	return s.detail(ctx, place)
}

func (s *placeService) List(ctx context.Context) ([]ports.PlaceDetail, error) {
	places, err := s.store.Places().List(ctx)
	if err != nil {
		return nil, domain.StorageFailure("list places", err)
	}

	out := make([]ports.PlaceDetail, len(places))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, p := range places {
		g.Go(func() error {
			d, err := s.detail(gctx, p)
			if err != nil {
				return err
			}
			out[i] = *d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// checkLocation fails when a place other than selfID lies within
// domain.LocationTolerance of c. It runs inside the write's unit of work;
// the store repeats the check under its own lock.
func checkLocation(ctx context.Context, tx ports.Store, selfID string, c domain.Coordinates) error {
	near, err := tx.Places().FindNear(ctx, c)
	if err != nil {
		return domain.StorageFailure("find near places", err)
	}
	for _, p := range near {
		if p.ID != selfID {
			return domain.ErrLocationTaken
		}
	}
	return nil
}

// resolveAmenities fails with a validation error naming the first id that
// does not resolve to an amenity.
func (s *placeService) resolveAmenities(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.store.Amenities().FindByIDs(ctx, ids)
	if err != nil {
		return domain.StorageFailure("find amenities", err)
	}
	known := make(map[string]struct{}, len(found))
	for _, a := range found {
		known[a.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return domain.Invalid("Amenity not found: %s", id)
		}
	}
	return nil
}

// detail assembles the read model of place, fetching its owner, amenities
// and reviews concurrently.
func (s *placeService) detail(ctx context.Context, place *domain.Place) (*ports.PlaceDetail, error) {
	var (
		owner     *domain.User
		amenities []*domain.Amenity
		reviews   []*domain.Review
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.store.Users().FindByID(gctx, place.OwnerID)
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return domain.StorageFailure("find owner", err)
		}
		owner = u
		return nil
	})
	g.Go(func() error {
		if len(place.AmenityIDs) == 0 {
			return nil
		}
		a, err := s.store.Amenities().FindByIDs(gctx, place.AmenityIDs)
		if err != nil {
			return domain.StorageFailure("find amenities", err)
		}
		amenities = a
		return nil
	})
	g.Go(func() error {
		r, err := s.store.Reviews().ListByPlace(gctx, place.ID)
		if err != nil {
			return domain.StorageFailure("list place reviews", err)
		}
		reviews = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &ports.PlaceDetail{
		ID:          place.ID,
		Title:       place.Title,
		Description: place.Description,
		Price:       place.Price,
		Latitude:    place.Latitude,
		Longitude:   place.Longitude,
		OwnerID:     place.OwnerID,
		Amenities:   make([]ports.AmenityView, 0, len(amenities)),
		Reviews:     toReviewViews(reviews),
		ReviewCount: len(reviews),
		CreatedAt:   place.CreatedAt,
		UpdatedAt:   place.UpdatedAt,
	}
	if owner != nil {
		d.Owner = &ports.OwnerSummary{
			ID:        owner.ID,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
			Email:     owner.Email,
		}
	}

	sort.Slice(amenities, func(i, j int) bool { return amenities[i].Name < amenities[j].Name })
	for _, a := range amenities {
		d.Amenities = append(d.Amenities, *toAmenityView(a))
	}

	if len(reviews) > 0 {
		var sum int
		for _, r := range reviews {
			sum += r.Rating
		}
		d.AverageRating = float64(sum) / float64(len(reviews))
	}
	return d, nil
}

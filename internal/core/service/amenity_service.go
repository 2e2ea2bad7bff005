package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
)

type amenityService struct {
	store ports.Store
	audit auditor
	log   zerolog.Logger
}

// NewAmenityService returns an AmenityService backed by store.
func NewAmenityService(store ports.Store, audit ports.AuditPublisher, log zerolog.Logger) ports.AmenityService {
	return &amenityService{store: store, audit: auditor{audit}, log: log}
}

func (s *amenityService) Create(ctx context.Context, name string) (*ports.AmenityView, error) {
	amenity, err := domain.NewAmenity(newID(), name, now())
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, "", amenity.Name); err != nil {
		return nil, err
	}
	if err := s.store.Amenities().Create(ctx, amenity); err != nil {
		return nil, domain.StorageFailure("create amenity", err)
	}

	s.audit.record(ctx, domain.AuditAmenityCreated, amenity.ID, map[string]string{"name": amenity.Name})
	s.log.Info().Str("amenity_id", amenity.ID).Str("name", amenity.Name).Msg("amenity created")
	return toAmenityView(amenity), nil
}

func (s *amenityService) Update(ctx context.Context, id, name string) (*ports.AmenityView, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateAmenityName(name); err != nil {
		return nil, err
	}
	amenity, err := s.store.Amenities().FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("find amenity", err)
	}
	if err := s.checkName(ctx, amenity.ID, name); err != nil {
		return nil, err
	}

	amenity.Name = name
	amenity.UpdatedAt = now()
	if err := s.store.Amenities().Update(ctx, amenity); err != nil {
		return nil, domain.StorageFailure("update amenity", err)
	}

	s.audit.record(ctx, domain.AuditAmenityUpdated, amenity.ID, map[string]string{"name": amenity.Name})
	s.log.Info().Str("amenity_id", amenity.ID).Msg("amenity updated")
	return toAmenityView(amenity), nil
}

// checkName fails when name is used by an amenity other than selfID.
func (s *amenityService) checkName(ctx context.Context, selfID, name string) error {
	existing, err := s.store.Amenities().FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrAmenityExists
	case err != nil && !isNotFound(err):
		return domain.StorageFailure("find amenity by name", err)
	}
	return nil
}

func (s *amenityService) Get(ctx context.Context, id string) (*ports.AmenityView, error) {
	amenity, err := s.store.Amenities().FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("find amenity", err)
	}
	return toAmenityView(amenity), nil
}

func (s *amenityService) List(ctx context.Context) ([]ports.AmenityView, error) {
	amenities, err := s.store.Amenities().List(ctx)
	if err != nil {
		return nil, domain.StorageFailure("list amenities", err)
	}
	out := make([]ports.AmenityView, 0, len(amenities))
	for _, a := range amenities {
		out = append(out, *toAmenityView(a))
	}
	return out, nil
}

// Delete unlinks the amenity from every place and removes it, atomically.
func (s *amenityService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Amenities().FindByID(ctx, id); err != nil {
		return domain.StorageFailure("find amenity", err)
	}

	start := time.Now()
	err := s.store.Atomic(ctx, func(ctx context.Context, tx ports.Store) error {
		if err := tx.Places().RemoveAmenity(ctx, id); err != nil {
			return domain.CascadeFailure("unlink amenity", err)
		}
		if err := tx.Amenities().Delete(ctx, id); err != nil {
			return domain.CascadeFailure("delete amenity", err)
		}
		return nil
	})
	if err != nil && !domain.IsDomainError(err) {
		err = domain.CascadeFailure("commit", err)
	}
	observeCascade(s.log, "amenity", id, start, err)
	if err != nil {
		return err
	}

	s.audit.record(ctx, domain.AuditAmenityDeleted, id, nil)
	s.log.Info().Str("amenity_id", id).Msg("amenity deleted")
	return nil
}

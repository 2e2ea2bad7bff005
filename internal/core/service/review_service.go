package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/policy"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/metrics"
)

type reviewService struct {
	store ports.Store
	audit auditor
	log   zerolog.Logger
}

// NewReviewService returns a ReviewService backed by store.
func NewReviewService(store ports.Store, audit ports.AuditPublisher, log zerolog.Logger) ports.ReviewService {
	return &reviewService{store: store, audit: auditor{audit}, log: log}
}

// Create records a review of in.PlaceID written by the caller. The place's
// current owner may not review it.
func (s *reviewService) Create(ctx context.Context, caller domain.Claims, in ports.ReviewInput) (*ports.ReviewView, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	placeID := strings.TrimSpace(in.PlaceID)
	if placeID == "" {
		return nil, domain.Invalid("place_id is required")
	}

	if _, err := s.store.Users().FindByID(ctx, caller.SubjectID); err != nil {
		if isNotFound(err) {
			return nil, domain.Invalid("user not found: %s", caller.SubjectID)
		}
		return nil, domain.StorageFailure("find author", err)
	}
	place, err := s.store.Places().FindByID(ctx, placeID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.Invalid("place not found: %s", placeID)
		}
		return nil, domain.StorageFailure("find place", err)
	}

	if err := policy.Authorize(caller, policy.ReviewCreate, policy.Owned(place.OwnerID)); err != nil {
		return nil, err
	}

	review, err := domain.NewReview(newID(), in.Text, in.Rating, caller.SubjectID, place.ID, now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Reviews().Create(ctx, review); err != nil {
		return nil, domain.StorageFailure("create review", err)
	}

	metrics.ReviewsCreatedTotal.WithLabelValues(strconv.Itoa(review.Rating)).Inc()
	s.audit.record(ctx, domain.AuditReviewCreated, review.ID, map[string]string{"place_id": review.PlaceID})
	s.log.Info().Str("review_id", review.ID).Str("place_id", review.PlaceID).Msg("review created")
	return toReviewView(review), nil
}

// Update applies the non-nil fields of patch. Only the author or an
// administrator may update a review.
func (s *reviewService) Update(ctx context.Context, caller domain.Claims, id string, patch ports.ReviewPatch) (*ports.ReviewView, error) {
	review, err := s.store.Reviews().FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("find review", err)
	}
	if err := policy.Authorize(caller, policy.ReviewUpdate, policy.Owned(review.AuthorID)); err != nil {
		return nil, err
	}

	if patch.Text != nil {
		review.Text = strings.TrimSpace(*patch.Text)
	}
	if patch.Rating != nil {
		review.Rating = *patch.Rating
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}

	review.UpdatedAt = now()
	if err := s.store.Reviews().Update(ctx, review); err != nil {
		return nil, domain.StorageFailure("update review", err)
	}

	s.audit.record(ctx, domain.AuditReviewUpdated, review.ID, nil)
	s.log.Info().Str("review_id", review.ID).Msg("review updated")
	return toReviewView(review), nil
}

func (s *reviewService) Delete(ctx context.Context, caller domain.Claims, id string) error {
	review, err := s.store.Reviews().FindByID(ctx, id)
	if err != nil {
		return domain.StorageFailure("find review", err)
	}
	if err := policy.Authorize(caller, policy.ReviewDelete, policy.Owned(review.AuthorID)); err != nil {
		return err
	}
	if err := s.store.Reviews().Delete(ctx, id); err != nil {
		return domain.StorageFailure("delete review", err)
	}

	s.audit.record(ctx, domain.AuditReviewDeleted, id, map[string]string{"place_id": review.PlaceID})
	s.log.Info().Str("review_id", id).Msg("review deleted")
	return nil
}

func (s *reviewService) Get(ctx context.Context, id string) (*ports.ReviewView, error) {
	review, err := s.store.Reviews().FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("find review", err)
	}
	return toReviewView(review), nil
}

func (s *reviewService) List(ctx context.Context) ([]ports.ReviewView, error) {
	reviews, err := s.store.Reviews().List(ctx)
	if err != nil {
		return nil, domain.StorageFailure("list reviews", err)
	}
	return toReviewViews(reviews), nil
}

func (s *reviewService) ListByPlace(ctx context.Context, placeID string) ([]ports.ReviewView, error) {
	if _, err := s.store.Places().FindByID(ctx, placeID); err != nil {
		return nil, domain.StorageFailure("find place", err)
	}
	reviews, err := s.store.Reviews().ListByPlace(ctx, placeID)
	if err != nil {
		return nil, domain.StorageFailure("list place reviews", err)
	}
	return toReviewViews(reviews), nil
}

func (s *reviewService) ListByUser(ctx context.Context, userID string) ([]ports.ReviewView, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, domain.StorageFailure("find user", err)
	}
	reviews, err := s.store.Reviews().ListByAuthor(ctx, userID)
	if err != nil {
		return nil, domain.StorageFailure("list user reviews", err)
	}
	return toReviewViews(reviews), nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/metrics"
)

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// auditor publishes audit events on behalf of a service. A nil publisher
// disables the audit trail.
type auditor struct {
	pub ports.AuditPublisher
}

func (a auditor) record(ctx context.Context, action domain.AuditAction, subjectID string, details map[string]string) {
	if a.pub == nil {
		return
	}
	a.pub.Publish(domain.AuditEvent{
		ID:        newID(),
		Action:    action,
		ActorID:   ports.ActorFrom(ctx),
		SubjectID: subjectID,
		At:        now(),
		Details:   details,
	})
}

// observeCascade records the outcome and duration of a cascading delete
// rooted at root.
func observeCascade(log zerolog.Logger, root, id string, start time.Time, err error) {
	metrics.CascadeDuration.WithLabelValues(root).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil && errors.Is(err, domain.ErrStorage) {
		result = "rolled_back"
		log.Error().Err(err).Str("root", root).Str("id", id).Msg("cascade rolled back")
	}
	metrics.CascadeDeletesTotal.WithLabelValues(root, result).Inc()
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func toUserView(u *domain.User) *ports.UserView {
	return &ports.UserView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toAmenityView(a *domain.Amenity) *ports.AmenityView {
	return &ports.AmenityView{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

func toReviewView(r *domain.Review) *ports.ReviewView {
	return &ports.ReviewView{
		ID:        r.ID,
		Text:      r.Text,
		Rating:    r.Rating,
		UserID:    r.AuthorID,
		PlaceID:   r.PlaceID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toReviewViews(reviews []*domain.Review) []ports.ReviewView {
	out := make([]ports.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, *toReviewView(r))
	}
	return out
}

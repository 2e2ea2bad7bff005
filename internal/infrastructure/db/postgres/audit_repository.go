package postgres

import (
	"context"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// AuditRepository persists audit events to the audit_events table.
type AuditRepository struct {
	s *Store
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var details any
	if len(event.Details) > 0 {
		details = event.Details
	}
	_, err := r.s.q.Exec(ctx,
		`INSERT INTO audit_events (id, action, actor_id, subject_id, at, details) VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, string(event.Action), event.ActorID, event.SubjectID, event.At, details,
	)
	return mapErr("insert audit event", err)
}

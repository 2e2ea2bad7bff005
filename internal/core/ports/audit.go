package ports

import (
	"context"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// AuditPublisher hands audit events off for asynchronous persistence.
// Publish must not block the caller on storage.
type AuditPublisher interface {
	Publish(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

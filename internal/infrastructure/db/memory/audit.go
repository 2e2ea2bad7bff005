package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
)

// AuditLog keeps audit events in memory, in insertion order. It is separate
// from Store so rolled back units never discard audit history.
type AuditLog struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

var _ ports.AuditRepository = (*AuditLog)(nil)

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) Insert(_ context.Context, event *domain.AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := *event
	e.Details = maps.Clone(event.Details)
	l.events = append(l.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (l *AuditLog) Events() []domain.AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

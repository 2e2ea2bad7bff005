package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// AuditRepository persists audit events to the audit_events collection.
type AuditRepository struct {
	col *mongo.Collection
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"_id":        event.ID,
		"action":     string(event.Action),
		"actor_id":   event.ActorID,
		"subject_id": event.SubjectID,
		"at":         event.At.UTC(),
	}
	if len(event.Details) > 0 {
		doc["details"] = event.Details
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

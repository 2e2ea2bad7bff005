package domain

import "time"

// AuditAction names a state change recorded in the audit trail.
type AuditAction string

const (
	AuditUserRegistered AuditAction = "user.registered"
	AuditUserUpdated    AuditAction = "user.updated"
	AuditUserDeleted    AuditAction = "user.deleted"
	AuditAmenityCreated AuditAction = "amenity.created"
	AuditAmenityUpdated AuditAction = "amenity.updated"
	AuditAmenityDeleted AuditAction = "amenity.deleted"
	AuditPlaceCreated   AuditAction = "place.created"
	AuditPlaceUpdated   AuditAction = "place.updated"
	AuditPlaceDeleted   AuditAction = "place.deleted"
	AuditReviewCreated  AuditAction = "review.created"
	AuditReviewUpdated  AuditAction = "review.updated"
	AuditReviewDeleted  AuditAction = "review.deleted"
)

// AuditEvent records who changed what. SubjectID is the id of the entity the
// action applies to.
type AuditEvent struct {
	ID        string            `json:"id"`
	Action    AuditAction       `json:"action"`
	ActorID   string            `json:"actor_id,omitempty"`
	SubjectID string            `json:"subject_id"`
	At        time.Time         `json:"at"`
	Details   map[string]string `json:"details,omitempty"`
}

// Package policy decides whether a caller may perform an operation. It is
// stateless: every decision is a function of the caller's claims and the
// target resource, which the caller loads beforehand.
package policy

import (
	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/metrics"
)

// Operation names a guarded action.
type Operation string

const (
	PlaceCreate   Operation = "place:create"
	PlaceUpdate   Operation = "place:update"
	PlaceDelete   Operation = "place:delete"
	ReviewCreate  Operation = "review:create"
	ReviewUpdate  Operation = "review:update"
	ReviewDelete  Operation = "review:delete"
	AmenityCreate Operation = "amenity:create"
	AmenityUpdate Operation = "amenity:update"
	AmenityDelete Operation = "amenity:delete"
	UserUpdate    Operation = "user:update"
	UserDelete    Operation = "user:delete"
	UserList      Operation = "user:list"
)

// Resource describes the target of an operation. OwnerID is the user the
// target belongs to: the place owner for place and review:create operations,
// the review author for review updates, the user itself for user operations.
// It is empty for operations without a stored target.
type Resource struct {
	OwnerID string
}

// Owned returns a Resource belonging to ownerID.
func Owned(ownerID string) Resource {
	return Resource{OwnerID: ownerID}
}

var denials = map[Operation]string{
	PlaceCreate:   "only owners can create places",
	PlaceUpdate:   "only the owner or an administrator can update this place",
	PlaceDelete:   "only the owner or an administrator can delete this place",
	ReviewCreate:  "user cannot review their own place",
	ReviewUpdate:  "only the author or an administrator can update this review",
	ReviewDelete:  "only the author or an administrator can delete this review",
	AmenityCreate: "admin privileges required to create amenities",
	AmenityUpdate: "admin privileges required to update amenities",
	AmenityDelete: "admin privileges required to delete amenities",
	UserUpdate:    "only the user or an administrator can update this user",
	UserDelete:    "admin privileges required to delete users",
	UserList:      "admin privileges required to list users",
}

// Decide reports whether claims allow op on res. Unknown operations are
// denied.
func Decide(claims domain.Claims, op Operation, res Resource) bool {
	if !claims.Authenticated() {
		return false
	}
	self := claims.SubjectID == res.OwnerID

	switch op {
	case PlaceCreate:
		return claims.Role == domain.RoleOwner
	case PlaceUpdate, PlaceDelete:
		return claims.IsAdmin || (self && claims.Role == domain.RoleOwner)
	case ReviewCreate:
		return !self
	case ReviewUpdate, ReviewDelete:
		return claims.IsAdmin || self
	case AmenityCreate, AmenityUpdate, AmenityDelete:
		return claims.IsAdmin
	case UserUpdate:
		return claims.IsAdmin || self
	case UserDelete, UserList:
		return claims.IsAdmin
	default:
		return false
	}
}

// Authorize is Decide returning an error: domain.ErrUnauthenticated when the
// claims carry no subject, domain.ErrSelfReview for a review of the caller's
// own place, otherwise a permission error specific to op.
func Authorize(claims domain.Claims, op Operation, res Resource) error {
	if Decide(claims, op, res) {
		return nil
	}
	metrics.PolicyDenialsTotal.WithLabelValues(string(op)).Inc()

	if !claims.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if op == ReviewCreate {
		return domain.ErrSelfReview
	}
	if msg, ok := denials[op]; ok {
		return domain.Denied("%s", msg)
	}
	return domain.Denied("operation %q is not permitted", op)
}

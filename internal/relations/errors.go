package relations

import (
	"errors"
)

// Failure taxonomy for relationship operations. All are reported
// synchronously to the caller; nothing is retried internally.
var (
	// ErrSelfRelationship is returned when subject and object are the same user
	ErrSelfRelationship = errors.New("cannot create a relationship with yourself")

	// ErrDuplicateRequest is returned when an active edge already exists for the pair
	ErrDuplicateRequest = errors.New("relationship already exists for this pair")

	// ErrNotFound is returned when the referenced edge does not exist
	ErrNotFound = errors.New("relationship not found")

	// ErrForbidden is returned when the acting user is not a legitimate party
	// for the requested role
	ErrForbidden = errors.New("acting user may not modify this relationship")

	// ErrPreconditionFailed is returned when the edge status does not match
	// the expected pre-transition state (double-accept, stale transition)
	ErrPreconditionFailed = errors.New("relationship status does not allow this transition")

	// ErrConflict is returned when a storage-level uniqueness violation
	// surfaces a concurrent insert; callers treat it as already satisfied
	ErrConflict = errors.New("relationship was created concurrently")

	// ErrInvalidArgument is returned for malformed target types or levels
	ErrInvalidArgument = errors.New("invalid relationship argument")
)

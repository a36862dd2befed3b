package api

import (
	"errors"

	"github.com/peernote/relations/internal/relations"
)

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
	ErrServerError    = -32000
)

// Application error codes for the relationship failure taxonomy
const (
	ErrSelfRelationship   = -32040
	ErrDuplicateRequest   = -32041
	ErrRelationNotFound   = -32042
	ErrForbidden          = -32043
	ErrPreconditionFailed = -32044
	ErrConflict           = -32045
)

// errorCode maps a service failure to its JSON-RPC code and message
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, relations.ErrSelfRelationship):
		return ErrSelfRelationship, "Self relationship"
	case errors.Is(err, relations.ErrDuplicateRequest):
		return ErrDuplicateRequest, "Duplicate request"
	case errors.Is(err, relations.ErrNotFound):
		return ErrRelationNotFound, "Not found"
	case errors.Is(err, relations.ErrForbidden):
		return ErrForbidden, "Forbidden"
	case errors.Is(err, relations.ErrPreconditionFailed):
		return ErrPreconditionFailed, "Precondition failed"
	case errors.Is(err, relations.ErrConflict):
		return ErrConflict, "Conflict"
	case errors.Is(err, relations.ErrInvalidArgument):
		return ErrInvalidParams, "Invalid params"
	default:
		return ErrServerError, "Server error"
	}
}

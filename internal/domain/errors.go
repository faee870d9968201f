package domain

import (
	"fmt"
	"strings"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ForbiddenError represents a failed access or ownership check.
type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string {
	if e.Reason == "" {
		return "access denied"
	}
	return e.Reason
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

// ErrForbidden is the sentinel error for access violations.
var ErrForbidden = ForbiddenError{}

// GoneError represents a resource that exists but is no longer active.
type GoneError struct {
	Resource string
}

func (e GoneError) Error() string {
	if e.Resource == "" {
		return "no longer active"
	}
	return fmt.Sprintf("%s is no longer active", e.Resource)
}

func (e GoneError) Is(target error) bool {
	_, ok := target.(GoneError)
	if ok {
		return true
	}
	_, ok = target.(*GoneError)
	return ok
}

// ErrGone is the sentinel error for inactive resources.
var ErrGone = GoneError{}

// ValidationError represents structurally unacceptable input. MissingFields
// keeps the offending field ids in the schema's required-list order.
type ValidationError struct {
	Message       string
	MissingFields []string
}

func (e ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return "Missing required fields: " + strings.Join(e.MissingFields, ", ")
	}
	if e.Message == "" {
		return "invalid input"
	}
	return e.Message
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for invalid input.
var ErrValidation = ValidationError{}

// ConflictError represents a uniqueness violation.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	if e.Reason == "" {
		return "conflict"
	}
	return e.Reason
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

// ErrConflict is the sentinel error for uniqueness violations.
var ErrConflict = ConflictError{}

package app

import (
	"errors"
	"fmt"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/planproject"
	"github.com/example/auditplus/internal/ports/secondary"
)

var (
	// ErrForbidden is returned when the actor's role does not allow an operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = secondary.ErrNotFound

	// ErrInvalidCredentials is returned by Authenticate for unknown users,
	// inactive users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports a refused operation with the guard's reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// PreconditionError reports a refused state transition together with what blocks it.
type PreconditionError struct {
	Reason        string
	MissingFields []string
	Pending       int
}

// Error returns the guard reason, which already names any missing fields.
func (e *PreconditionError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// requireRole checks the actor's role before any guard runs so role failures
// surface as ErrForbidden rather than as validation errors.
func requireRole(actorRole string, roles ...access.Role) error {
	if res := access.Require(actorRole, roles...); !res.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, res.Reason)
	}
	return nil
}

// preconditionFailed converts a refused plan-project guard.
func preconditionFailed(res planproject.GuardResult) error {
	return &PreconditionError{Reason: res.Reason, MissingFields: res.MissingFields, Pending: res.Pending}
}

// duplicateOr maps a repository duplicate to a validation error.
func duplicateOr(err error, reason, op string) error {
	if errors.Is(err, secondary.ErrDuplicate) {
		return invalid(reason)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, secondary.ErrNotFound)
}

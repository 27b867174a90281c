// Package errs defines the error taxonomy shared by the repository, service,
// and HTTP layers. Callers classify failures with errors.Is / errors.As and
// map them to transport outcomes at the boundary.
package errs

import (
	"errors"
	"fmt"

	"passvault/internal/models"
)

var (
	// ErrValidation marks malformed caller input. No state was changed.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden marks an authenticated caller that is not authorized
	// for the requested operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrIntegrity marks stored ciphertext that failed authenticated
	// decryption. It signals data corruption, not a transient fault.
	ErrIntegrity = errors.New("ciphertext integrity check failed")
	// ErrUpstream marks an unavailable collaborator (database, resolver).
	// Callers may retry.
	ErrUpstream = errors.New("upstream unavailable")
)

// ConflictError reports an invalid state-machine transition: the share
// request already reached the named terminal state. It unwraps to nothing;
// detect it with errors.As.
type ConflictError struct {
	// Status is the terminal state the request is already in.
	Status models.ShareStatus
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("share request already %s", e.Status)
}

// Conflict builds a ConflictError for the given terminal status.
func Conflict(status models.ShareStatus) *ConflictError {
	return &ConflictError{Status: status}
}

// Validation wraps ErrValidation with a caller-facing reason.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// Upstream wraps a collaborator failure so the boundary can classify it
// as retryable.
func Upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

// Package shared contains common domain types and errors that are used across
// all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds used for classification with errors.Is().
var (
	// Entity errors
	ErrNotFound = errors.New("entity not found")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidDate  = errors.New("invalid date")

	// Remote catalog unreachable or returned a malformed response.
	ErrTransport = errors.New("transport error")

	// Store pool exhausted, closed or unreachable.
	ErrStoreConnection = errors.New("store connection error")

	// Unique, foreign-key or not-null violation reported by the store.
	ErrConstraint = errors.New("constraint violation")

	// Expected, user-facing rejection such as an occupied exam slot.
	ErrConflict = errors.New("conflict")

	// No active session for the acting identity.
	ErrAuth = errors.New("authentication required")

	// Password hash could not be computed or verified.
	ErrHash = errors.New("password hash error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "catalog", "exam", "identity"
	Op      string // Operation that failed, e.g., "Allocate", "Login"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidDate)
}

// IsConflict checks if the error is an expected scheduling conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsConstraint checks if the store rejected a write on a constraint.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}

// IsUnavailable checks if the error came from an unreachable dependency.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrStoreConnection)
}

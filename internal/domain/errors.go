// Package domain defines core types, interfaces, and errors for querygate.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// MalformedPayloadError indicates a stored event could not be reconstructed,
// typically an unknown event kind written by a newer (or corrupt) schema.
// It signals a data-migration bug and is never retried.
type MalformedPayloadError struct {
	Message string
}

func (e *MalformedPayloadError) Error() string { return e.Message }

// NotApprovedError indicates an execute attempt on a request whose derived
// review status is not APPROVED. Status carries the status at evaluation time.
type NotApprovedError struct {
	Status ReviewStatus
}

func (e *NotApprovedError) Error() string {
	return fmt.Sprintf("execution request is not approved (status %s)", e.Status)
}

// ConcurrentModificationError indicates an optimistic append lost the race
// with a concurrent append on the same execution request.
type ConcurrentModificationError struct {
	RequestID string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("execution request %s was modified concurrently", e.RequestID)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrMalformedPayload creates a MalformedPayloadError with a formatted message.
func ErrMalformedPayload(format string, args ...interface{}) *MalformedPayloadError {
	return &MalformedPayloadError{Message: fmt.Sprintf(format, args...)}
}

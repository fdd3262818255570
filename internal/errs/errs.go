// Package errs holds the error taxonomy shared by all components:
// validation failures, not-found lookups, store failures, status conflicts,
// idempotency violations and remote call failures.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup by transaction id yields nothing.
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict is matched by every ConflictError.
	ErrStatusConflict = errors.New("status conflict")

	// ErrIdempotencyInProgress is returned when another request holds the same
	// idempotency key and its transaction is not persisted yet.
	ErrIdempotencyInProgress = errors.New("request with the same idempotency key is in progress")

	// ErrIdempotencyKeyReused is returned when an idempotency key is replayed
	// with a different payload.
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")

	// ErrDuplicateKey is returned by the store on a unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid is a shorthand for &ValidationError{Field: field, Message: msg}.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// StoreError reports that the durable store is unavailable or a write failed.
// It is always retryable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err into a StoreError unless it is nil or already classified.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// ConflictError is returned by a guarded status update whose expected prior
// status does not match the stored one.
type ConflictError struct {
	TransactionID string
	Expected      string
	Actual        string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transaction %s: expected status %q, actual %q", e.TransactionID, e.Expected, e.Actual)
}

func (e *ConflictError) Is(target error) bool { return target == ErrStatusConflict }

// RemoteError reports a failed call to another component.
type RemoteError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsRetryable reports whether the caller may safely repeat the request.
func IsRetryable(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return true
	}
	if errors.Is(err, ErrIdempotencyInProgress) {
		return true
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode == 0 || re.StatusCode >= 500
	}
	return false
}

package sqlmodel

import (
	"errors"
	"fmt"

	"github.com/syssam/sqlmodel/dialect/sql"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("sqlmodel: record not found")

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("sqlmodel: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("sqlmodel: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the model name.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given model.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

type (
	// ValueConversionError is returned when a value cannot be converted
	// to or from its column representation.
	ValueConversionError = sql.ValueConversionError
	// BackendError carries the backend error that outlived the retry
	// policy. Its message is the backend message verbatim.
	BackendError = sql.BackendError
	// PoolError reports a connection that was destroyed.
	PoolError = sql.PoolError
)

// IsValueConversionError returns true if the error is a ValueConversionError.
func IsValueConversionError(err error) bool {
	return sql.IsValueConversionError(err)
}

// IsBackendError returns true if the error was returned by the backend.
func IsBackendError(err error) bool {
	if err == nil {
		return false
	}
	var e *BackendError
	return errors.As(err, &e)
}

// IsTransient reports whether err was a transient backend failure, such as
// a deadlock, that persisted through every attempt.
func IsTransient(err error) bool {
	var e *BackendError
	if errors.As(err, &e) {
		return e.Transient
	}
	return sql.IsTransient(err)
}

// IsConstraintError returns true if the error resulted from a unique or
// foreign-key constraint violation.
func IsConstraintError(err error) bool {
	return sql.IsUniqueConstraintError(err) || sql.IsForeignKeyConstraintError(err)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "sqlmodel: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b []byte
	b = append(b, "sqlmodel: multiple errors:"...)
	for i, err := range e.Errors {
		b = fmt.Appendf(b, "\n  [%d] %v", i+1, err)
	}
	return string(b)
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

package sql

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/syssam/sqlmodel/schema/field"
)

// ValueConversionError is returned when a value cannot be converted to or
// from the storage representation of its attribute. It is raised while
// compiling, so the statement never reaches the backend.
type ValueConversionError struct {
	Attribute string
	Type      field.Type
	Value     any
	Err       error
}

// Error returns the error string.
func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("sqlmodel: cannot convert %v (%T) for %s attribute %q: %v", e.Value, e.Value, e.Type, e.Attribute, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValueConversionError) Unwrap() error { return e.Err }

// BackendError wraps an error returned by the backend after the retry policy
// gave up. Its message is the backend message verbatim, and Unwrap exposes the
// driver error (*mysql.MySQLError, *pq.Error, ...) for code checks.
type BackendError struct {
	Op        string // "query" or "exec"
	Attempts  int    // attempts made, including the failing one
	Transient bool   // whether the final error was classified as transient
	Err       error
}

// Error returns the backend error message unchanged.
func (e *BackendError) Error() string { return e.Err.Error() }

// Unwrap returns the driver error.
func (e *BackendError) Unwrap() error { return e.Err }

// PoolError reports an error that broke a pooled connection. The executor
// destroys the connection and logs the error; it is never returned to
// callers of unrelated operations.
type PoolError struct {
	Err error
}

// Error returns the error string.
func (e *PoolError) Error() string {
	return fmt.Sprintf("sqlmodel: pool: connection destroyed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *PoolError) Unwrap() error { return e.Err }

// IsValueConversionError returns true if the error is a ValueConversionError.
func IsValueConversionError(err error) bool {
	var e *ValueConversionError
	return errors.As(err, &e)
}

// MySQL error numbers retried by the executor.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// PostgreSQL SQLSTATE codes retried by the executor.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// sqlStateError is an interface for errors that provide SQLSTATE codes (pgx).
type sqlStateError interface {
	SQLState() string
}

// IsTransient reports whether err is expected to resolve on retry: deadlocks,
// lock wait timeouts, serialization failures, busy databases and connections
// lost mid-query.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsConnectionLost(err) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return isTransientState(string(pe.Code))
	}
	if e, ok := asError[sqlStateError](err); ok {
		return isTransientState(e.SQLState())
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	// Fallback to string matching for drivers that don't expose codes.
	msg := strings.ToLower(err.Error())
	return containsAny(msg,
		"deadlock",
		"lock wait timeout",
		"database is locked",
	)
}

func isTransientState(code string) bool {
	switch code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	}
	return false
}

// IsConnectionLost reports whether err means the connection it was returned
// on can no longer be used.
func IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	return containsAny(err.Error(),
		"PROTOCOL_CONNECTION_LOST",
		"connection lost",
		"broken pipe",
	)
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild  = 1452 // Cannot add or update a child row
)

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return true
	}
	var pe *pq.Error
	if errors.As(err, &pe) && string(pe.Code) == pgUniqueViolation {
		return true
	}
	return containsAny(err.Error(),
		"Error 1062",                 // MySQL (string fallback)
		"violates unique constraint", // Postgres (string fallback)
		"UNIQUE constraint failed",   // SQLite
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlForeignKeyParent || me.Number == mysqlForeignKeyChild) {
		return true
	}
	var pe *pq.Error
	if errors.As(err, &pe) && string(pe.Code) == pgForeignKeyViolation {
		return true
	}
	return containsAny(err.Error(),
		"Error 1451",
		"Error 1452",
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	)
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// PostgresErrorMessage describes PostgreSQL related failures.
	PostgresErrorMessage = "postgres operation failed"
	// QdrantErrorMessage describes restaurant index failures.
	QdrantErrorMessage = "restaurant index query failed"
	// SupabaseErrorMessage describes hosted detail store failures.
	SupabaseErrorMessage = "supabase operation failed"
	// MailErrorMessage describes notification delivery failures.
	MailErrorMessage = "notification delivery failed"
	// NotFoundMessage is used when a backend reports a missing record.
	NotFoundMessage = "record not found"
	// BadRequestMessage is returned for malformed client input.
	BadRequestMessage = "malformed request"
)

var (
	// ErrNotFound marks logical not-found results from any backend.
	ErrNotFound = errors.New("not found")
	// ErrEmptySession is returned when an operation needs a session identity and got none.
	ErrEmptySession = errors.New("empty session identity")
	// ErrInvalidPayload marks a queue message or request body that cannot be processed.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Error wraps an underlying error with an HTTP status and safe message.
type Error struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the provided information.
func New(err error, status int, message string) *Error {
	return &Error{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// BadRequest wraps a client input error.
func BadRequest(err error) *Error {
	return New(err, http.StatusBadRequest, BadRequestMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an *Error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// SafeMessage returns the client-safe message carried by err.
func SafeMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return SystemErrorMessage
}

// IsNotFound reports whether err is a logical not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

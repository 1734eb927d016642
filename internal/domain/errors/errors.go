package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("concurrent update conflict")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Stable error codes returned to clients
const (
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConflict            = "CONFLICT"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Unauthorized and Forbidden are written by the auth middleware
func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// Invalid wraps ErrInvalidInput with a client-safe reason.
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// Upstream marks a collaborator failure as ErrUpstreamUnavailable while keeping
// the cause for logs. Errors that already carry a domain kind pass through.
func Upstream(err error) error {
	if err == nil || IsDomain(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

// IsDomain reports whether err carries one of the domain sentinels.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrConflict, ErrUpstreamUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// FromError maps any error to the AppError written to clients.
// Messages of unmapped errors never leave the process.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, clientMessage(err, ErrInvalidInput), err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, "resource not found", err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, "forbidden", err)
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return NewAppError(http.StatusConflict, CodeConflict, "conflicting update, please retry", err)
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, context.DeadlineExceeded):
		return NewAppError(http.StatusServiceUnavailable, CodeUpstreamUnavailable, "service temporarily unavailable", err)
	default:
		return InternalError(err)
	}
}

// clientMessage keeps only the reason produced by Invalid, which is written
// for clients; anything else falls back to the sentinel text.
func clientMessage(err, sentinel error) string {
	prefix := sentinel.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 && len(msg) > i+len(prefix) {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

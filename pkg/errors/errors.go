package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the stable, machine readable error category exposed to API callers.
type Kind string

const (
	KindForbidden         Kind = "Forbidden"
	KindInvalidTransition Kind = "InvalidTransition"
	KindValidationFailed  Kind = "ValidationFailed"
	KindNotFound          Kind = "NotFound"
	KindConflict          Kind = "Conflict"
	KindUnauthorized      Kind = "Unauthorized"
	KindRateLimited       Kind = "RateLimited"
	KindInternal          Kind = "Internal"
)

// FieldError reports a single offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string       `json:"code"`
	Kind       Kind         `json:"kind"`
	Message    string       `json:"message"`
	Fields     []FieldError `json:"fields,omitempty"`
	StatusCode int          `json:"-"`
	Internal   error        `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches AppErrors by code so that copies produced by WithInternal or
// WithMessage still satisfy errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy of the AppError with a replaced user facing message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Message = message
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Kind:       KindUnauthorized,
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Kind:       KindUnauthorized,
		Message:    "Invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Kind:       KindForbidden,
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrInvalidTransition = &AppError{
		Code:       "INVALID_TRANSITION",
		Kind:       KindInvalidTransition,
		Message:    "Status change is not allowed from the current status",
		StatusCode: http.StatusConflict,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Kind:       KindValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Kind:       KindNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Kind:       KindConflict,
		Message:    "Resource was modified concurrently",
		StatusCode: http.StatusConflict,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Kind:       KindValidationFailed,
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Kind:       KindInternal,
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Kind:       KindRateLimited,
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds a new application error with the provided metadata.
func New(code string, kind Kind, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Kind:       KindInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps malformed input with a helpful message.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}

// NewValidationFailed carries the complete, ordered list of offending fields.
func NewValidationFailed(fields []FieldError) *AppError {
	cpy := *ErrValidationFailed
	cpy.Fields = append([]FieldError(nil), fields...)
	return &cpy
}

// NewFieldError is shorthand for a ValidationFailed error on a single field.
func NewFieldError(field, message string) *AppError {
	return NewValidationFailed([]FieldError{{Field: field, Message: message}})
}

// KindOf reports the error kind, treating unknown errors as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	appErr := FromError(err)
	if appErr.Kind == "" {
		return KindInternal
	}
	return appErr.Kind
}

// IsKind reports whether err carries the supplied kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
// Fields carries per-form-field messages so the presentation layer can redisplay
// the offending inputs.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"`
	Internal   error             `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
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

// Is matches AppErrors by code so copies produced by WithInternal and
// WithFields still compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	if !ok || e == nil || other == nil {
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

// WithFields returns a copy of the AppError carrying field-keyed messages.
func (e *AppError) WithFields(fields map[string]string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Fields = fields
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrAccountBlocked = &AppError{
		Code:       "ACCOUNT_BLOCKED",
		Message:    "Your account has been blocked. Contact support.",
		StatusCode: http.StatusForbidden,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}

	// ErrDependencyFailure covers unreachable collaborators (database, mailer).
	// It renders as a generic retry-later message and is never swallowed.
	ErrDependencyFailure = &AppError{
		Code:       "DEPENDENCY_FAILURE",
		Message:    "Service temporarily unavailable. Please try again.",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrOTPExpired = &AppError{
		Code:       "OTP_EXPIRED",
		Message:    "The verification code has expired. Request a new one.",
		StatusCode: http.StatusBadRequest,
	}

	ErrOTPMismatch = &AppError{
		Code:       "OTP_MISMATCH",
		Message:    "Incorrect verification code. Please try again.",
		StatusCode: http.StatusBadRequest,
	}

	// ErrSessionMissing means the flow has no pending state for this session.
	// Handlers render it as a redirect to the flow's start page, not a failure.
	ErrSessionMissing = &AppError{
		Code:       "SESSION_MISSING",
		Message:    "Your session has expired. Please start again.",
		StatusCode: http.StatusUnauthorized,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "We could not find an account for that email.",
		StatusCode: http.StatusNotFound,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
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

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewValidation builds a field-keyed validation error for form redisplay.
func NewValidation(fields map[string]string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Please correct the highlighted fields",
		Fields:     fields,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewConflict reports duplicate email/mobile collisions with the offending fields.
func NewConflict(fields map[string]string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    "Account details already registered",
		Fields:     fields,
		StatusCode: http.StatusConflict,
	}
}

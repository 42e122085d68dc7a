package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Stable machine-readable error codes exposed to API clients.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeTokenInvalid      = "TOKEN_INVALID"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeDuplicateResource = "DUPLICATE_RESOURCE"
	CodeStateConflict     = "STATE_CONFLICT"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodeRequestTimeout    = "REQUEST_TIMEOUT"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code so callers can branch with errors.Is.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewBadRequest(message string) error {
	return NewDomainError(CodeBadRequest, message, http.StatusBadRequest, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError(CodeResourceNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUserNotFound(details map[string]any) error {
	return NewDomainError(CodeUserNotFound, "user not found", http.StatusNotFound, details)
}

// NewUnauthenticated reports a protected request that carried no credentials.
func NewUnauthenticated(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

// NewTokenExpired reports a correctly signed token whose expiry has passed.
func NewTokenExpired(message string) error {
	return NewDomainError(CodeTokenExpired, message, http.StatusUnauthorized, nil)
}

// NewTokenInvalid reports a malformed token or one signed with the wrong secret.
func NewTokenInvalid(message string) error {
	return NewDomainError(CodeTokenInvalid, message, http.StatusUnauthorized, nil)
}

// NewUnauthorized reports rejected credentials.
func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeDuplicateResource, message, http.StatusConflict, details)
}

func NewStateConflict(message string, details map[string]any) error {
	return NewDomainError(CodeStateConflict, message, http.StatusConflict, details)
}

func NewTooManyRequests(message string, details map[string]any) error {
	return NewDomainError(CodeTooManyRequests, message, http.StatusTooManyRequests, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
// An expired or cancelled request context wins over INTERNAL_SERVER_ERROR, even when already wrapped.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Code != CodeInternal {
		return domainErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DomainError{
			Code:       CodeRequestTimeout,
			Message:    "request timed out",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	}
	if domainErr != nil {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewDomainError(CodeResourceNotFound, "resource not found", http.StatusNotFound, nil)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts err to a DomainError while keeping the error interface.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err resolves to a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

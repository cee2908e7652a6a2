package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that carry their own HTTP status code.
// New error types map to responses by implementing it, without touching
// the handler-side switch.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// ConflictError represents a resource conflict with details about the existing resource
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (subject, chat, document)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// QuotaCodeTrialChatLimit is the machine-readable code clients key on to
// prompt for an upgrade when an organization's trial allowance runs out.
const QuotaCodeTrialChatLimit = "trial_chat_limit_reached"

// QuotaError indicates an organization has exhausted its trial allowance.
// Carries a stable machine-readable code so clients can distinguish it
// from generic errors.
type QuotaError struct {
	Message string
	Code    string
}

// Error implements the error interface
func (e *QuotaError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *QuotaError) StatusCode() int {
	return http.StatusPaymentRequired
}

// Is allows errors.Is() to match against ErrQuotaExceeded
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

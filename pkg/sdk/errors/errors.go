// Package errors provides SDK-specific error types for the PromptFlow API client.
//
// Every non-2xx response is decoded exactly once, at the HTTP boundary, into
// an *Error carrying one of the Kind values below. Callers classify failures
// with the Is* helpers and never re-parse raw response bodies.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an API failure.
type Kind int

const (
	// KindHTTPStatus is a non-success status without a structured error body.
	KindHTTPStatus Kind = iota
	// KindServerMessage is a non-success status whose body carried an
	// "error" or "message" string.
	KindServerMessage
	// KindUniqueConstraint signals a duplicate entry rejected by the server.
	KindUniqueConstraint
)

func (k Kind) String() string {
	switch k {
	case KindServerMessage:
		return "server_message"
	case KindUniqueConstraint:
		return "unique_constraint"
	default:
		return "http_status"
	}
}

// UniqueViolationCode is the Postgres unique_violation SQLSTATE, passed
// through by the waitlist sink.
const UniqueViolationCode = "23505"

// AlreadyRegisteredMessage is shown for KindUniqueConstraint failures.
const AlreadyRegisteredMessage = "already registered"

// Error represents an error returned by the PromptFlow API.
type Error struct {
	Kind       Kind   `json:"kind"`
	StatusCode int    `json:"status_code"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ValidationError is a client-side rejection raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StatusMessage is the generic message used when the server gave no detail.
func StatusMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// ParseErrorResponse decodes a non-success response into an *Error.
func ParseErrorResponse(status int, body []byte) *Error {
	var apiErr struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Code    any             `json:"code"`
	}

	if err := json.Unmarshal(body, &apiErr); err == nil {
		code := codeString(apiErr.Code)
		msg := errorField(apiErr.Error)
		if msg == "" {
			msg = apiErr.Message
		}

		if code == UniqueViolationCode {
			return &Error{
				Kind:       KindUniqueConstraint,
				StatusCode: status,
				Code:       code,
				Message:    AlreadyRegisteredMessage,
			}
		}

		if msg != "" {
			return &Error{
				Kind:       KindServerMessage,
				StatusCode: status,
				Code:       code,
				Message:    msg,
			}
		}
	}

	return &Error{
		Kind:       KindHTTPStatus,
		StatusCode: status,
		Message:    StatusMessage(status),
	}
}

// errorField accepts both {"error":"text"} and {"error":{"message":"text"}}.
func errorField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

func codeString(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return fmt.Sprintf("%.0f", c)
	default:
		return ""
	}
}

func asError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := asError(err); ok {
		return e.StatusCode
	}
	return 0
}

// IsNotFound returns true if the error is a 404 Not Found error.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsServerMessage returns true if the server supplied an error message.
func IsServerMessage(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind == KindServerMessage
}

// IsUniqueConstraint returns true for duplicate-entry failures.
func IsUniqueConstraint(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind == KindUniqueConstraint
}

// IsValidation returns true if err is a client-side ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

// Message returns the user-facing text for err. API and validation errors
// surface their own message; anything else falls back to fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok && e.Message != "" {
		return e.Message
	}
	var v *ValidationError
	if stderrors.As(err, &v) {
		return v.Message
	}
	return fallback
}

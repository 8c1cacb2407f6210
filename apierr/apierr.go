// Package apierr defines the uniform error taxonomy shared by the resource
// clients and the translator that maps backend error payloads onto it.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the uniform category a backend error is translated into.
type Kind int

const (
	// KindPassthrough marks an unmapped backend code forwarded with its
	// original message and status.
	KindPassthrough Kind = iota
	KindInvalidArgument
	KindNotFound
	// KindInvalidState covers conflicting or unacceptable state transitions.
	KindInvalidState
	// KindInsufficientCapacity means the backend had no room to place the
	// requested resource.
	KindInsufficientCapacity
	KindServiceUnavailable
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid-argument"
	case KindNotFound:
		return "not-found"
	case KindInvalidState:
		return "invalid-state"
	case KindInsufficientCapacity:
		return "insufficient-capacity"
	case KindServiceUnavailable:
		return "service-unavailable"
	case KindInternal:
		return "internal"
	default:
		return "passthrough"
	}
}

// statusFor maps each kind to its default HTTP status. InvalidArgument maps
// to 409 rather than 400: the backends in this family report client-input
// errors with conflict semantics, and translation keeps that normalization.
func statusFor(k Kind) int {
	switch k {
	case KindInvalidArgument, KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientCapacity, KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error is a translated backend error. Translation happens exactly once, at
// the transport boundary; cached negative entries hold the same shape.
type Error struct {
	Kind       Kind
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("cirrus: %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("cirrus: %s [%s] (%d): %s", e.Kind, e.Code, e.StatusCode, e.Message)
}

// New builds an Error of the given kind with its default status code.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, StatusCode: statusFor(kind), Code: code, Message: message}
}

// IsKind reports whether err is (or wraps) an Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// IsNotFound reports whether err translates to a not-found result.
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// BackendError is the raw error envelope the backends return. It satisfies
// error so the transport can surface it directly, but clients are expected
// to pass it through Translate before returning it to callers.
type BackendError struct {
	StatusCode int      `json:"-"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Messages   []string `json:"messages,omitempty"`
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %d %s: %s", e.StatusCode, e.Code, e.text())
}

func (e *BackendError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return strings.Join(e.Messages, "; ")
}

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call
type Kind int

const (
	// KindNetwork means no response was received
	KindNetwork Kind = iota
	// KindAuth is a 401; the session is treated as expired
	KindAuth
	// KindValidation is any other 4xx carrying a user-facing message
	KindValidation
	// KindNotFound is a 404, rendered as an empty state
	KindNotFound
	// KindServer is a 5xx
	KindServer
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the uniform failure shape of every backend call.
// Status is 0 for network failures.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	Method    string
	Path      string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the same call may succeed
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindServer:
		return true
	}
	return e.Status == http.StatusTooManyRequests
}

// defaultMessages are used when the backend body carries no message
var defaultMessages = map[int]string{
	http.StatusBadRequest:          "The request was malformed or invalid",
	http.StatusUnauthorized:        "Your session has expired, please log in again",
	http.StatusForbidden:           "Access to this resource is denied",
	http.StatusNotFound:            "The requested resource was not found",
	http.StatusConflict:            "The request conflicts with the current state",
	http.StatusTooManyRequests:     "Too many requests, please slow down",
	http.StatusInternalServerError: "Something went wrong on our side, please try again",
	http.StatusBadGateway:          "The store is temporarily unavailable, please try again",
	http.StatusServiceUnavailable:  "The store is temporarily unavailable, please try again",
	http.StatusGatewayTimeout:      "The store took too long to respond, please try again",
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

func newStatusError(method, path string, status int, body []byte, requestID string) *Error {
	msg := messageFromBody(body)
	if msg == "" {
		msg = defaultMessages[status]
	}
	if msg == "" {
		msg = strings.ToLower(http.StatusText(status))
	}
	return &Error{
		Kind:      kindForStatus(status),
		Status:    status,
		Message:   msg,
		Method:    method,
		Path:      path,
		RequestID: requestID,
	}
}

func newNetworkError(method, path string, requestID string, err error) *Error {
	return &Error{
		Kind:      KindNetwork,
		Message:   "could not reach the store, check your connection",
		Method:    method,
		Path:      path,
		RequestID: requestID,
		Err:       err,
	}
}

// messageFromBody extracts "message" or "error" from a JSON error body
func messageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// AsError unwraps err into *Error
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports a 404
func IsNotFound(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindNotFound
}

// IsUnauthorized reports a 401
func IsUnauthorized(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindAuth
}

// IsRetryable reports whether err is a transient failure
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable()
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"net/http"

	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
)

// Fallback messages when nothing better is known.
const (
	MsgNoResponse    = "No response received from server"
	MsgConfiguration = "Request configuration error"
	MsgHTTPFallback  = "An error occurred"
)

// ErrorKind says which stage of a call failed.
type ErrorKind int

const (
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP ErrorKind = iota
	// KindTransport means no response arrived (network failure, timeout, cancellation).
	KindTransport
	// KindConfig means the request could not be built or prepared.
	KindConfig
)

// APIError is the single error shape every failed call is reported as.
type APIError struct {
	Message string
	Status  int
	// Data is the raw response body of an HTTP error, nil otherwise.
	Data []byte
	Kind ErrorKind

	cause error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Is lets callers test against the shared sentinels instead of status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case campuserrors.ErrNoResponse:
		return e.Kind == KindTransport
	case campuserrors.ErrUnauthorized:
		return e.Kind == KindHTTP && e.Status == http.StatusUnauthorized
	case campuserrors.ErrNotFound:
		return e.Kind == KindHTTP && e.Status == http.StatusNotFound
	case campuserrors.ErrConflict:
		return e.Kind == KindHTTP && e.Status == http.StatusConflict
	case campuserrors.ErrRateLimited:
		return e.Kind == KindHTTP && e.Status == http.StatusTooManyRequests
	case campuserrors.ErrValidation:
		return e.Kind == KindHTTP && (e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity)
	case campuserrors.ErrBadResponse:
		return e.Kind == KindHTTP && e.Status == http.StatusBadGateway && e.cause != nil
	case campuserrors.ErrInternal:
		return e.Status >= http.StatusInternalServerError && e.Kind != KindTransport
	}
	return false
}

// IsUnauthorized reports whether err is an authorization failure from the server.
func IsUnauthorized(err error) bool {
	return campuserrors.Is(err, campuserrors.ErrUnauthorized)
}

// ConfigError marks a failure that happened before the request left the process.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return MsgConfiguration
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func noResponseError(cause error) *APIError {
	return &APIError{Message: MsgNoResponse, Status: http.StatusServiceUnavailable, Kind: KindTransport, cause: cause}
}

func configurationError(cause error) *APIError {
	msg := MsgConfiguration
	if cause != nil && cause.Error() != "" {
		msg = cause.Error()
	}
	return &APIError{Message: msg, Status: http.StatusInternalServerError, Kind: KindConfig, cause: cause}
}

// BadResponseError reports a 2xx body that could not be decoded.
func BadResponseError(cause error) *APIError {
	return &APIError{Message: "Malformed response from server", Status: http.StatusBadGateway, Kind: KindHTTP, cause: cause}
}

func httpError(status int, body []byte) *APIError {
	msg := MsgHTTPFallback
	var envelope struct {
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
		msg = envelope.Message
	}
	return &APIError{Message: msg, Status: status, Data: body, Kind: KindHTTP}
}

package conecta

import (
	"errors"
	"fmt"
)

// Sentinel errors for gateway operations.
var (
	// ErrMissingCommerceID indicates the client was built without a commerce identifier.
	ErrMissingCommerceID = errors.New("conecta: commerce identifier is required")

	// ErrInvalidBaseURL indicates the base URL override could not be used.
	ErrInvalidBaseURL = errors.New("conecta: invalid base URL")

	// ErrInvalidRequest indicates a request record failed validation and was not sent.
	ErrInvalidRequest = errors.New("conecta: invalid request")

	// ErrInvalidAmount indicates an amount that has no canonical two-decimal form.
	ErrInvalidAmount = errors.New("conecta: invalid amount")

	// ErrMissingSignatureField indicates the request body lacks a field the signature needs.
	ErrMissingSignatureField = errors.New("conecta: missing signature field")

	// ErrTransport indicates the request never produced an HTTP response.
	ErrTransport = errors.New("conecta: transport error")

	// ErrRemote indicates the gateway answered with a non-2xx status.
	ErrRemote = errors.New("conecta: gateway returned an error")

	// ErrMalformedResponse indicates a 2xx response whose body is not a JSON object.
	ErrMalformedResponse = errors.New("conecta: malformed gateway response")
)

// ErrorKind classifies a GatewayError.
type ErrorKind string

const (
	// KindTransport is a network, DNS, timeout or cancellation failure. No code is available.
	KindTransport ErrorKind = "TRANSPORT"

	// KindRemote is a non-2xx response carrying a {code, message} body.
	KindRemote ErrorKind = "REMOTE"

	// KindMalformedRemote is a non-2xx response whose body could not be parsed.
	// Code holds the HTTP status number and Message the status text.
	KindMalformedRemote ErrorKind = "MALFORMED_REMOTE"

	// KindInvalidResponse is a 2xx response that did not decode.
	KindInvalidResponse ErrorKind = "INVALID_RESPONSE"
)

// GatewayError is the single error type returned by gateway calls.
type GatewayError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Endpoint is the operation that failed.
	Endpoint EndpointName

	// StatusCode is the HTTP status, or 0 for transport errors.
	StatusCode int

	// Code is the gateway error code, passed through unchanged.
	Code string

	// Message is the gateway error message, passed through unchanged.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("conecta: %s: transport error: %v", e.Endpoint, e.Err)
	case KindInvalidResponse:
		return fmt.Sprintf("conecta: %s: status %d: malformed response: %v", e.Endpoint, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("conecta: %s: status %d: code %s: %s", e.Endpoint, e.StatusCode, e.Code, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is matches the ErrTransport, ErrRemote and ErrMalformedResponse sentinels by kind.
func (e *GatewayError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrRemote:
		return e.Kind == KindRemote || e.Kind == KindMalformedRemote
	case ErrMalformedResponse:
		return e.Kind == KindInvalidResponse
	}
	return false
}

// NewTransportError wraps a failure that produced no HTTP response.
func NewTransportError(endpoint EndpointName, err error) *GatewayError {
	return &GatewayError{
		Kind:     KindTransport,
		Endpoint: endpoint,
		Err:      err,
	}
}

// NewRemoteError builds the error for a non-2xx response.
func NewRemoteError(endpoint EndpointName, status int, code, message string) *GatewayError {
	return &GatewayError{
		Kind:       KindRemote,
		Endpoint:   endpoint,
		StatusCode: status,
		Code:       code,
		Message:    message,
	}
}

// AsGatewayError extracts a *GatewayError from err's chain.
func AsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

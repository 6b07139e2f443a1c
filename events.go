package conecta

import (
	"encoding/json"
	"time"
)

// CallEventType represents the outcome of a gateway call.
type CallEventType string

const (
	// CallEventSuccess indicates a 2xx response that decoded.
	CallEventSuccess CallEventType = "success"

	// CallEventFailure indicates the call ended with a GatewayError.
	CallEventFailure CallEventType = "failure"
)

// Receipt is the observable record of one gateway call. Callers persist it to
// reconcile against the bank's own records. It never contains the commerce
// identifier.
type Receipt struct {
	// RequestID is generated client-side and is not sent to the gateway.
	RequestID string `json:"requestId"`

	Endpoint  EndpointName    `json:"endpoint"`
	URL       string          `json:"url"`
	Signature string          `json:"signature"`
	Request   json.RawMessage `json:"request"`

	// StatusCode is 0 when no response was received.
	StatusCode int             `json:"statusCode,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// CallEvent is delivered to the client's after-call hook once per sent call.
type CallEvent struct {
	Type      CallEventType
	Timestamp time.Time
	Endpoint  EndpointName
	URL       string
	RequestID string

	// StatusCode is 0 for transport failures.
	StatusCode int

	Duration time.Duration

	// Error is the *GatewayError on failure.
	Error error

	Receipt Receipt
}

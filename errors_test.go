package conecta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGatewayError_Is(t *testing.T) {
	tests := []struct {
		name      string
		err       *GatewayError
		transport bool
		remote    bool
		malformed bool
	}{
		{
			name:      "transport",
			err:       NewTransportError(EndpointBCVRate, errors.New("dial tcp: refused")),
			transport: true,
		},
		{
			name:   "remote",
			err:    NewRemoteError(EndpointBCVRate, 400, "99", "denied"),
			remote: true,
		},
		{
			name:   "malformed remote",
			err:    &GatewayError{Kind: KindMalformedRemote, StatusCode: 502, Code: "502", Message: "Bad Gateway"},
			remote: true,
		},
		{
			name:      "invalid response",
			err:       &GatewayError{Kind: KindInvalidResponse, StatusCode: 200, Err: errors.New("eof")},
			malformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("checkout: %w", tt.err)
			if got := errors.Is(wrapped, ErrTransport); got != tt.transport {
				t.Errorf("Is(ErrTransport) = %v, want %v", got, tt.transport)
			}
			if got := errors.Is(wrapped, ErrRemote); got != tt.remote {
				t.Errorf("Is(ErrRemote) = %v, want %v", got, tt.remote)
			}
			if got := errors.Is(wrapped, ErrMalformedResponse); got != tt.malformed {
				t.Errorf("Is(ErrMalformedResponse) = %v, want %v", got, tt.malformed)
			}

			gwErr, ok := AsGatewayError(wrapped)
			if !ok || gwErr != tt.err {
				t.Errorf("AsGatewayError did not return the original error")
			}
		})
	}
}

func TestGatewayError_UnwrapTransport(t *testing.T) {
	err := NewTransportError(EndpointOperationStatus, fmt.Errorf("post: %w", context.DeadlineExceeded))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Expected transport error to unwrap to context.DeadlineExceeded")
	}
	if err.Code != "" {
		t.Errorf("Transport errors carry no code, got %q", err.Code)
	}
}

func TestGatewayError_Message(t *testing.T) {
	err := NewRemoteError(EndpointC2PCharge, 403, "99", "denied")
	msg := err.Error()
	for _, part := range []string{"c2p_charge", "403", "99", "denied"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Expected %q in error message %q", part, msg)
		}
	}
}

func TestAsGatewayError_Other(t *testing.T) {
	if _, ok := AsGatewayError(errors.New("plain")); ok {
		t.Error("Expected plain error not to be a GatewayError")
	}
}

package conecta

import (
	"fmt"
	"time"
)

// TimeoutConfig holds timeout configuration for gateway calls.
type TimeoutConfig struct {
	// RequestTimeout bounds a single call when the caller's context has no deadline.
	RequestTimeout time.Duration
}

// DefaultTimeouts provides sensible defaults for gateway calls.
var DefaultTimeouts = TimeoutConfig{
	RequestTimeout: 30 * time.Second,
}

// WithRequestTimeout returns a new TimeoutConfig with updated request timeout.
func (tc TimeoutConfig) WithRequestTimeout(d time.Duration) TimeoutConfig {
	tc.RequestTimeout = d
	return tc
}

// Validate ensures timeout values are reasonable.
func (tc TimeoutConfig) Validate() error {
	if tc.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", tc.RequestTimeout)
	}
	return nil
}

// Package http provides the signed HTTP client for the Conecta banking gateway.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	conecta "github.com/Freidergandica/conecta-go"
	"github.com/Freidergandica/conecta-go/gateway"
	"github.com/Freidergandica/conecta-go/http/internal/helpers"
)

const (
	// HeaderCommerce carries the commerce identifier.
	HeaderCommerce = "Commerce"

	// HeaderAuthorization carries the hex HMAC signature.
	HeaderAuthorization = "Authorization"
)

// OnBeforeCallFunc is invoked after signing and before the request is sent.
// Return an error to abort the call; nothing is sent in that case.
type OnBeforeCallFunc func(ctx context.Context, endpoint conecta.Endpoint, body []byte) error

// OnAfterCallFunc is invoked once for every call that was sent, with its
// outcome. Hooks run synchronously on the calling goroutine.
type OnAfterCallFunc func(ctx context.Context, event conecta.CallEvent)

// Client is a client for the Conecta banking gateway.
//
// A Client is immutable after NewClient returns and is safe for concurrent
// use. It never retries, caches or logs; every call maps to exactly one POST.
type Client struct {
	baseURL    string
	commerceID string
	httpClient *http.Client
	timeouts   conecta.TimeoutConfig

	onBeforeCall []OnBeforeCallFunc
	onAfterCall  []OnAfterCallFunc
}

// Verify that Client implements gateway.Interface.
var _ gateway.Interface = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client) error

// NewClient creates a gateway client for commerceID. The identifier is sent
// as the Commerce header and is also the HMAC signing key.
func NewClient(commerceID string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(commerceID) == "" {
		return nil, conecta.ErrMissingCommerceID
	}

	client := &Client{
		baseURL:    conecta.DefaultBaseURL,
		commerceID: commerceID,
		httpClient: http.DefaultClient,
		timeouts:   conecta.DefaultTimeouts,
	}

	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// WithBaseURL overrides the gateway host. Trailing slashes are removed.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) error {
		normalized, err := helpers.NormalizeBaseURL(baseURL)
		if err != nil {
			return err
		}
		c.baseURL = normalized
		return nil
	}
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithTimeouts sets the per-call timeout applied when the caller's context has
// no deadline.
func WithTimeouts(timeouts conecta.TimeoutConfig) ClientOption {
	return func(c *Client) error {
		if err := timeouts.Validate(); err != nil {
			return err
		}
		c.timeouts = timeouts
		return nil
	}
}

// WithOnBeforeCall adds a hook run before each request is sent.
func WithOnBeforeCall(fn OnBeforeCallFunc) ClientOption {
	return func(c *Client) error {
		if fn != nil {
			c.onBeforeCall = append(c.onBeforeCall, fn)
		}
		return nil
	}
}

// WithOnAfterCall adds a hook run after each sent request completes.
func WithOnAfterCall(fn OnAfterCallFunc) ClientOption {
	return func(c *Client) error {
		if fn != nil {
			c.onAfterCall = append(c.onAfterCall, fn)
		}
		return nil
	}
}

// BaseURL returns the normalized gateway host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the full request URL for an endpoint.
func (c *Client) URL(endpoint conecta.Endpoint) string {
	return c.baseURL + endpoint.Path
}

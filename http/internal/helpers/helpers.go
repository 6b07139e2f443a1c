// Package helpers provides internal HTTP utilities for the Conecta gateway client.
package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	conecta "github.com/Freidergandica/conecta-go"
)

// ErrNotObject is returned when a response body is not a JSON object.
var ErrNotObject = errors.New("body is not a JSON object")

// NormalizeBaseURL trims whitespace and trailing slashes and checks that the
// result is an absolute http(s) URL. Normalizing twice yields the same value.
func NormalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", conecta.ErrInvalidBaseURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", conecta.ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q must be an absolute http(s) URL", conecta.ErrInvalidBaseURL, raw)
	}
	return trimmed, nil
}

// EncodeBody marshals a request record to the exact bytes sent on the wire.
// HTML escaping is disabled and the trailing newline is dropped.
func EncodeBody(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeResult decodes a 2xx body into out after checking it is a JSON object.
// The shape check is the only reason a 2xx body is rejected; result types
// decode their fields leniently.
func DecodeResult(body []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return ErrNotObject
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ParseErrorResponse builds the GatewayError for a non-2xx response.
//
// A body with a code or message yields a KindRemote error carrying both
// unchanged. Anything else yields KindMalformedRemote with the status number
// as code and the status text as message.
func ParseErrorResponse(endpoint conecta.EndpointName, resp *http.Response, body []byte) *conecta.GatewayError {
	var errBody conecta.ErrorBody
	if err := json.Unmarshal(body, &errBody); err == nil && (errBody.Code != "" || errBody.Message != "") {
		return conecta.NewRemoteError(endpoint, resp.StatusCode, errBody.Code.String(), errBody.Message)
	}

	return &conecta.GatewayError{
		Kind:       conecta.KindMalformedRemote,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Code:       strconv.Itoa(resp.StatusCode),
		Message:    StatusText(resp),
	}
}

// StatusText returns the standard text for the response status, falling back
// to the text the server sent for non-standard codes.
func StatusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

// ReceiptBody returns body as a JSON value suitable for a Receipt. Bodies that
// are not valid JSON are stored as a JSON string.
func ReceiptBody(body []byte) json.RawMessage {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(append([]byte(nil), body...))
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}

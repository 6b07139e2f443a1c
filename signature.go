package conecta

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureSpec defines how the signature input of an endpoint is assembled.
type SignatureSpec struct {
	// Prefix is a literal written before the first field. Usually empty.
	Prefix string

	// Fields are top-level keys of the JSON body, concatenated in order
	// without delimiters.
	Fields []string
}

// Message builds the signature input from an encoded JSON request body.
//
// Values are taken from the body itself so the signed text is always the
// text that was sent: JSON strings are unquoted, numbers and booleans are
// used as written. A missing or null field returns ErrMissingSignatureField.
func (s SignatureSpec) Message(body []byte) (string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("failed to decode request body: %w", err)
	}

	var b strings.Builder
	b.WriteString(s.Prefix)
	for _, field := range s.Fields {
		raw, ok := doc[field]
		raw = bytes.TrimSpace(raw)
		if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return "", fmt.Errorf("%w: %s", ErrMissingSignatureField, field)
		}
		switch raw[0] {
		case '"':
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return "", fmt.Errorf("failed to decode field %s: %w", field, err)
			}
			b.WriteString(v)
		case '{', '[':
			return "", fmt.Errorf("%w: %s is not a scalar", ErrMissingSignatureField, field)
		default:
			b.Write(raw)
		}
	}
	return b.String(), nil
}

// Sign returns the lowercase hex HMAC-SHA256 of message keyed by key.
func Sign(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign derives the signature input for this endpoint from body and signs it
// with commerceID. It returns both the message and the signature.
func (e Endpoint) Sign(commerceID string, body []byte) (message, signature string, err error) {
	message, err = e.Signature.Message(body)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", e.Name, err)
	}
	return message, Sign(commerceID, message), nil
}

// VerifySignature reports whether signature is valid for body on this endpoint.
// The comparison is constant time.
func (e Endpoint) VerifySignature(commerceID string, body []byte, signature string) bool {
	_, expected, err := e.Sign(commerceID, body)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

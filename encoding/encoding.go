// Package encoding provides utilities for encoding and decoding call receipts.
// Receipts are stored by callers as opaque strings and decoded during
// reconciliation against the bank's records.
package encoding

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	conecta "github.com/Freidergandica/conecta-go"
)

// EncodeReceipt converts a Receipt to a base64-encoded JSON string.
//
// Returns an error if JSON marshaling fails.
func EncodeReceipt(receipt conecta.Receipt) (string, error) {
	receiptJSON, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(receiptJSON), nil
}

// DecodeReceipt converts a base64-encoded JSON string to a Receipt.
//
// Returns an error if base64 decoding or JSON unmarshaling fails.
func DecodeReceipt(encoded string) (conecta.Receipt, error) {
	var receipt conecta.Receipt

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return receipt, fmt.Errorf("failed to decode base64: %w", err)
	}

	if err := json.Unmarshal(decoded, &receipt); err != nil {
		return receipt, fmt.Errorf("failed to unmarshal receipt: %w", err)
	}

	return receipt, nil
}

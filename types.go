// Package conecta implements the domain model of the Conecta banking gateway:
// the endpoint table, the per-endpoint signature specs, and the request and
// response records exchanged with the gateway.
//
// The gateway authenticates every call with an HMAC-SHA256 signature keyed by
// the merchant's commerce identifier. The signed message is a concatenation of
// a fixed, endpoint-specific subset of the request fields, so the JSON field
// names below are part of the wire contract and must not be normalized. Some
// endpoints use capitalized keys and others lowercase keys.
//
// Import path: github.com/Freidergandica/conecta-go
package conecta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BCVRateRequest queries the official BCV exchange rate for a currency.
type BCVRateRequest struct {
	// Currency is the ISO 4217 currency code (e.g., "USD").
	Currency string `json:"Moneda"`

	// ValueDate is the value date in YYYY-MM-DD format.
	ValueDate string `json:"Fechavalor"`
}

// ChangeRequest sends money back to a payer's mobile-payment account ("vuelto").
type ChangeRequest struct {
	// DestinationPhone is the recipient phone number (e.g., "04121234567").
	DestinationPhone string `json:"TelefonoDestino"`

	// NationalID is the recipient's national identity document (e.g., "V12345678").
	NationalID string `json:"Cedula"`

	// BankCode is the recipient's four-digit bank code (e.g., "0102").
	BankCode string `json:"Banco"`

	// Amount is the amount to send.
	Amount Amount `json:"Monto"`

	// Concept is a free-form description shown to the recipient.
	Concept string `json:"Concepto,omitempty"`

	// IP is the originating client IP address.
	IP string `json:"Ip,omitempty"`
}

// C2PRequest charges a payer identified by phone, bank and national id.
type C2PRequest struct {
	DestinationPhone string `json:"TelefonoDestino"`
	NationalID       string `json:"Cedula"`
	Concept          string `json:"Concepto,omitempty"`
	BankCode         string `json:"Banco"`
	IP               string `json:"Ip,omitempty"`
	Amount           Amount `json:"Monto"`

	// OTP is the payer's bank-issued purchase key for this charge.
	OTP string `json:"Otp"`
}

// C2PReversalRequest voids a prior C2P charge.
type C2PReversalRequest struct {
	NationalID string `json:"Cedula"`
	BankCode   string `json:"Banco"`

	// Reference is the reference number returned by the original charge.
	Reference string `json:"Referencia"`
}

// DispersionRecipient is a single credit within a bulk payout.
type DispersionRecipient struct {
	Name          string `json:"nombre"`
	NationalID    string `json:"cedula"`
	AccountNumber string `json:"cuenta"`
	Amount        Amount `json:"monto"`
}

// DispersionRequest pays out a batch of recipients.
type DispersionRequest struct {
	// Amount is the batch total. It must equal the sum of the recipients.
	Amount Amount `json:"monto"`

	// Date is the payout date in MM/DD/YYYY format.
	Date string `json:"fecha"`

	Reference  string                `json:"Referencia,omitempty"`
	Recipients []DispersionRecipient `json:"personas"`
}

// OTPRequest asks the payer's bank to send a one-time code for a debit.
type OTPRequest struct {
	BankCode   string `json:"Banco"`
	Amount     Amount `json:"Monto"`
	Phone      string `json:"Telefono"`
	NationalID string `json:"Cedula"`
}

// ImmediateDebitRequest executes a debit authorized by an OTP obtained
// through a prior OTPRequest with the same bank, phone, id and amount.
type ImmediateDebitRequest struct {
	BankCode   string `json:"Banco"`
	Amount     Amount `json:"Monto"`
	Phone      string `json:"Telefono"`
	NationalID string `json:"Cedula"`
	Name       string `json:"Nombre"`
	OTP        string `json:"OTP"`
	Concept    string `json:"Concepto,omitempty"`
}

// ImmediateCreditRequest credits a recipient identified by phone number.
type ImmediateCreditRequest struct {
	BankCode   string `json:"Banco"`
	NationalID string `json:"Cedula"`
	Phone      string `json:"Telefono"`
	Amount     Amount `json:"Monto"`
	Concept    string `json:"Concepto,omitempty"`
}

// AccountCreditRequest credits a recipient identified by a 20-digit account number.
type AccountCreditRequest struct {
	NationalID    string `json:"Cedula"`
	AccountNumber string `json:"Cuenta"`
	Amount        Amount `json:"Monto"`
	Concept       string `json:"Concepto,omitempty"`
}

// AccountMandateRequest registers a recurring-debit mandate tied to an account.
type AccountMandateRequest struct {
	DocumentID    string `json:"docId"`
	Name          string `json:"nombre"`
	AccountNumber string `json:"cuenta"`
	Amount        Amount `json:"monto"`
	Concept       string `json:"concepto,omitempty"`
}

// PhoneMandateRequest registers a recurring-debit mandate tied to a phone.
type PhoneMandateRequest struct {
	DocumentID string `json:"docId"`
	Phone      string `json:"telefono"`
	Name       string `json:"nombre"`
	BankCode   string `json:"banco"`
	Amount     Amount `json:"monto"`
	Concept    string `json:"concepto,omitempty"`
}

// OperationStatusRequest queries the status of a prior operation.
type OperationStatusRequest struct {
	OperationID string `json:"Id"`
}

// FlexString is a response field the gateway sends either as a JSON string
// or as a JSON number. It always holds the textual form.
type FlexString string

// UnmarshalJSON accepts any JSON value. Objects and arrays keep their compact
// JSON text.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*f = FlexString(data)
		return nil
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*f = FlexString(buf.String())
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("conecta: unsupported value %s", data)
	}
	*f = FlexString(data)
	return nil
}

// String returns the textual value.
func (f FlexString) String() string {
	return string(f)
}

// OperationResult is the response shape shared by every money-moving endpoint.
//
// A 200 response does not mean the operation succeeded: the gateway reports
// business-level outcomes (insufficient funds, invalid OTP, ...) through Code
// and Message. The client returns those bodies as successful results and the
// caller must inspect them.
type OperationResult struct {
	Code      FlexString `json:"code"`
	Message   string     `json:"message,omitempty"`
	Reference FlexString `json:"reference,omitempty"`
	ID        FlexString `json:"Id,omitempty"`
	Success   *bool      `json:"success,omitempty"`

	// Raw is the verbatim response body.
	Raw json.RawMessage `json:"-"`
}

// BCVRateResponse is the response to a BCV rate lookup.
type BCVRateResponse struct {
	Code      FlexString `json:"code"`
	Message   string     `json:"message,omitempty"`
	Rate      FlexString `json:"tipocambio"`
	ValueDate string     `json:"fechavalor,omitempty"`

	// Raw is the verbatim response body.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields of a response object best-effort.
// A field with an unexpected type never fails the decode; Raw keeps the
// original body for callers that need it.
func (r *OperationResult) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*r = OperationResult{
		Code:      flexField(fields, "code"),
		Message:   flexField(fields, "message").String(),
		Reference: flexField(fields, "reference"),
		ID:        flexField(fields, "Id"),
		Success:   flexBool(fields, "success"),
	}
	return nil
}

// UnmarshalJSON decodes the known fields of a rate response best-effort.
func (r *BCVRateResponse) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*r = BCVRateResponse{
		Code:      flexField(fields, "code"),
		Message:   flexField(fields, "message").String(),
		Rate:      flexField(fields, "tipocambio"),
		ValueDate: flexField(fields, "fechavalor").String(),
	}
	return nil
}

func objectFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// lookupField matches key exactly, then case-insensitively like encoding/json.
func lookupField(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if raw, ok := fields[key]; ok {
		return raw, true
	}
	for k, raw := range fields {
		if strings.EqualFold(k, key) {
			return raw, true
		}
	}
	return nil, false
}

func flexField(fields map[string]json.RawMessage, key string) FlexString {
	raw, ok := lookupField(fields, key)
	if !ok {
		return ""
	}
	var f FlexString
	if err := f.UnmarshalJSON(raw); err != nil {
		return FlexString(raw)
	}
	return f
}

// flexBool accepts true/false, their string forms and 1/0. Anything else is nil.
func flexBool(fields map[string]json.RawMessage, key string) *bool {
	text := flexField(fields, key)
	if text == "" {
		return nil
	}
	b, err := strconv.ParseBool(string(text))
	if err != nil {
		return nil
	}
	return &b
}

// ErrorBody is the error document returned with non-2xx responses.
type ErrorBody struct {
	Code    FlexString `json:"code"`
	Message string     `json:"message"`
}

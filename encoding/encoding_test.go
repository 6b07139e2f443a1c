package encoding

import (
	"encoding/json"
	"testing"
	"time"

	conecta "github.com/Freidergandica/conecta-go"
)

func TestReceiptRoundTrip(t *testing.T) {
	receipt := conecta.Receipt{
		RequestID:  "5f1c1b2e-0000-4000-8000-000000000001",
		Endpoint:   conecta.EndpointC2PCharge,
		URL:        "https://gw.example.com/MBc2p",
		Signature:  "2503dd263cd56a4ff5f5e5f668e6597f987b0348a446e92464b60212d899894a",
		Request:    json.RawMessage(`{"Monto":"10.00"}`),
		StatusCode: 200,
		Response:   json.RawMessage(`{"code":"00"}`),
		Timestamp:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	encoded, err := EncodeReceipt(receipt)
	if err != nil {
		t.Fatalf("EncodeReceipt failed: %v", err)
	}

	decoded, err := DecodeReceipt(encoded)
	if err != nil {
		t.Fatalf("DecodeReceipt failed: %v", err)
	}

	if decoded.RequestID != receipt.RequestID || decoded.Endpoint != receipt.Endpoint {
		t.Errorf("Identity fields changed: %+v", decoded)
	}
	if decoded.Signature != receipt.Signature {
		t.Errorf("Signature changed: %s", decoded.Signature)
	}
	if string(decoded.Request) != string(receipt.Request) || string(decoded.Response) != string(receipt.Response) {
		t.Errorf("Bodies changed: %s / %s", decoded.Request, decoded.Response)
	}
	if !decoded.Timestamp.Equal(receipt.Timestamp) {
		t.Errorf("Timestamp changed: %v", decoded.Timestamp)
	}
}

func TestDecodeReceipt_Invalid(t *testing.T) {
	if _, err := DecodeReceipt("not base64!"); err == nil {
		t.Error("Expected base64 error")
	}
	if _, err := DecodeReceipt("bm90IGpzb24="); err == nil {
		t.Error("Expected JSON error")
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conecta "github.com/Freidergandica/conecta-go"
	"github.com/Freidergandica/conecta-go/encoding"
	"github.com/Freidergandica/conecta-go/sandbox"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testCommerceID = "secret"

// writeConfig creates an isolated config file so the user's own files are not read.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func newSandbox(t *testing.T) (*sandbox.Server, string) {
	t.Helper()
	srv, err := sandbox.NewServer(testCommerceID)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

// receiptFrom decodes the receipt line printed by --receipt.
func receiptFrom(t *testing.T, stdout string) conecta.Receipt {
	t.Helper()
	var encoded string
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, "receipt: ") {
			encoded = strings.TrimPrefix(line, "receipt: ")
		}
	}
	require.NotEmpty(t, encoded)

	receipt, err := encoding.DecodeReceipt(encoded)
	require.NoError(t, err)
	return receipt
}

func TestSign_C2P(t *testing.T) {
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\n")
	body := `{"TelefonoDestino":"04121234567","Cedula":"V12345678","Banco":"0102","Monto":"10.00","Otp":"12345678"}`

	stdout, _, err := execute(t, "--config", cfg, "sign", "/MBc2p", "--body", body)
	require.NoError(t, err)
	assert.Contains(t, stdout, `message:   " 0412123456710.000102V12345678"`)
	assert.Contains(t, stdout, "signature: 2503dd263cd56a4ff5f5e5f668e6597f987b0348a446e92464b60212d899894a")
}

func TestSign_UnknownEndpoint(t *testing.T) {
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\n")
	_, _, err := execute(t, "--config", cfg, "sign", "nope", "--body", "{}")
	assert.ErrorContains(t, err, `unknown endpoint "nope"`)
}

func TestStatus_AgainstSandbox(t *testing.T) {
	_, baseURL := newSandbox(t)
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\nbase_url: "+baseURL+"\n")

	stdout, stderr, err := execute(t, "--config", cfg, "status", "op-123", "--receipt")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"Id": "op-123"`)
	assert.Contains(t, stderr, "gateway_call")

	receipt := receiptFrom(t, stdout)
	assert.Equal(t, conecta.EndpointOperationStatus, receipt.Endpoint)
	assert.Equal(t, 200, receipt.StatusCode)
	assert.NotContains(t, string(receipt.Request)+receipt.URL, testCommerceID)
}

func TestC2P_RemoteErrorFromSandbox(t *testing.T) {
	srv, baseURL := newSandbox(t)
	srv.SetScenario("/MBc2p", sandbox.Scenario{
		Status: 400,
		Body:   conecta.ErrorBody{Code: "41", Message: "saldo insuficiente"},
	})
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\nbase_url: "+baseURL+"\n")

	_, stderr, err := execute(t, "--config", cfg, "c2p",
		"--bank", "0102", "--phone", "04121234567", "--id", "V12345678", "--amount", "10", "--otp", "12345678")
	require.Error(t, err)
	assert.ErrorIs(t, err, conecta.ErrRemote)
	assert.Contains(t, err.Error(), "saldo insuficiente")
	assert.Contains(t, stderr, "gateway_call_failed")
}

func TestFlagsOverrideConfig(t *testing.T) {
	_, baseURL := newSandbox(t)
	cfg := writeConfig(t, "commerce_id: someone-else\nbase_url: "+baseURL+"\n")

	// The config commerce is rejected by the sandbox; the flag wins.
	_, _, err := execute(t, "--config", cfg, "--commerce", testCommerceID, "bcv", "--date", "2024-01-15")
	require.NoError(t, err)

	_, _, err = execute(t, "--config", cfg, "bcv", "--date", "2024-01-15")
	assert.ErrorIs(t, err, conecta.ErrRemote)
}

func TestEnvironmentConfig(t *testing.T) {
	_, baseURL := newSandbox(t)
	cfg := writeConfig(t, "base_url: "+baseURL+"\n")
	t.Setenv("CONECTA_COMMERCE_ID", testCommerceID)
	t.Setenv("CONECTA_TIMEOUT", "5s")

	command := newRootCmd()
	require.NoError(t, command.ParseFlags([]string{"--config", cfg}))

	loaded, err := loadConfig(command)
	require.NoError(t, err)
	assert.Equal(t, testCommerceID, loaded.CommerceID)
	assert.Equal(t, baseURL, loaded.BaseURL)
	assert.Equal(t, 5*time.Second, loaded.Timeout)
	assert.Equal(t, "text", loaded.LogFormat)
}

func TestMissingCommerce(t *testing.T) {
	cfg := writeConfig(t, "log_format: json\n")
	_, _, err := execute(t, "--config", cfg, "status", "op-1")
	assert.ErrorIs(t, err, conecta.ErrMissingCommerceID)
}

func TestInvalidAmount(t *testing.T) {
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\n")
	_, _, err := execute(t, "--config", cfg, "otp", "--amount", "10.505")
	assert.ErrorIs(t, err, conecta.ErrInvalidAmount)
}

func TestChange_AgainstSandbox(t *testing.T) {
	_, baseURL := newSandbox(t)
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\nbase_url: "+baseURL+"\n")

	stdout, _, err := execute(t, "--config", cfg, "change",
		"--bank", "0102", "--phone", "04121234567", "--id", "V12345678", "--amount", "5", "--concept", "vuelto", "--receipt")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"code": "00"`)

	receipt := receiptFrom(t, stdout)
	assert.Equal(t, conecta.EndpointChange, receipt.Endpoint)
	assert.JSONEq(t,
		`{"TelefonoDestino":"04121234567","Cedula":"V12345678","Banco":"0102","Monto":"5.00","Concepto":"vuelto"}`,
		string(receipt.Request))
}

func TestDisperse_AgainstSandbox(t *testing.T) {
	_, baseURL := newSandbox(t)
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\nbase_url: "+baseURL+"\n")

	stdout, _, err := execute(t, "--config", cfg, "disperse",
		"--recipient", "Ana Perez,V12345678,01020000000000000001,10.00",
		"--recipient", "Luis Rojas, V87654321, 01050000000000000002, 5.5",
		"--date", "01/15/2024", "--reference", "lote-1", "--receipt")
	require.NoError(t, err)

	receipt := receiptFrom(t, stdout)
	assert.Equal(t, conecta.EndpointDispersion, receipt.Endpoint)

	var sent conecta.DispersionRequest
	require.NoError(t, json.Unmarshal(receipt.Request, &sent))
	assert.Equal(t, "15.50", sent.Amount.String())
	assert.Equal(t, "01/15/2024", sent.Date)
	assert.Equal(t, "lote-1", sent.Reference)
	require.Len(t, sent.Recipients, 2)
	assert.Equal(t, "Luis Rojas", sent.Recipients[1].Name)
	assert.Equal(t, "V87654321", sent.Recipients[1].NationalID)
	assert.Equal(t, "5.50", sent.Recipients[1].Amount.String())
}

func TestDisperse_Rejected(t *testing.T) {
	srv, baseURL := newSandbox(t)
	srv.SetScenario("/MBdispersion", sandbox.Scenario{Status: 500, Body: "unexpected call"})
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\nbase_url: "+baseURL+"\n")

	_, _, err := execute(t, "--config", cfg, "disperse")
	assert.ErrorContains(t, err, "at least one --recipient")

	_, _, err = execute(t, "--config", cfg, "disperse", "--recipient", "Ana Perez,V12345678,10.00")
	assert.ErrorContains(t, err, "expected name,id,account,amount")

	// A total that does not match the recipients fails validation before sending.
	_, _, err = execute(t, "--config", cfg, "disperse",
		"--recipient", "Ana Perez,V12345678,01020000000000000001,10.00",
		"--amount", "12", "--date", "01/15/2024")
	assert.ErrorIs(t, err, conecta.ErrInvalidRequest)
}

func TestMandate_AgainstSandbox(t *testing.T) {
	_, baseURL := newSandbox(t)
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\nbase_url: "+baseURL+"\n")

	stdout, _, err := execute(t, "--config", cfg, "mandate",
		"--account", "01020000000000000001", "--id", "V12345678", "--name", "Ana Perez", "--amount", "20", "--receipt")
	require.NoError(t, err)
	assert.Equal(t, conecta.EndpointMandateByAccount, receiptFrom(t, stdout).Endpoint)

	stdout, _, err = execute(t, "--config", cfg, "mandate",
		"--phone", "04121234567", "--bank", "0102", "--id", "V12345678", "--name", "Ana Perez", "--amount", "20", "--receipt")
	require.NoError(t, err)
	receipt := receiptFrom(t, stdout)
	assert.Equal(t, conecta.EndpointMandateByPhone, receipt.Endpoint)
	assert.JSONEq(t,
		`{"docId":"V12345678","telefono":"04121234567","nombre":"Ana Perez","banco":"0102","monto":"20.00"}`,
		string(receipt.Request))
}

func TestMandate_RequiresExactlyOneTarget(t *testing.T) {
	cfg := writeConfig(t, "commerce_id: "+testCommerceID+"\n")

	_, _, err := execute(t, "--config", cfg, "mandate", "--amount", "20")
	assert.ErrorContains(t, err, "one of --account or --phone is required")

	_, _, err = execute(t, "--config", cfg, "mandate",
		"--account", "01020000000000000001", "--phone", "04121234567", "--amount", "20")
	assert.ErrorContains(t, err, "mutually exclusive")
}

// mcp --http shares one session across concurrent tool calls; run with -race.
func TestSession_ConcurrentCallsRecordReceipt(t *testing.T) {
	_, baseURL := newSandbox(t)
	cfg := writeConfig(t, "base_url: "+baseURL+"\n")

	command := newRootCmd()
	require.NoError(t, command.ParseFlags([]string{"--config", cfg, "--commerce", testCommerceID}))
	s, err := newSession(command)
	require.NoError(t, err)
	assert.Nil(t, s.lastReceipt())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.client.OperationStatus(context.Background(),
				conecta.OperationStatusRequest{OperationID: fmt.Sprintf("op-%d", i)})
			assert.NoError(t, err)
			assert.NotNil(t, s.lastReceipt())
		}(i)
	}
	wg.Wait()

	last := s.lastReceipt()
	require.NotNil(t, last)
	assert.Equal(t, conecta.EndpointOperationStatus, last.Endpoint)
	assert.Equal(t, 200, last.StatusCode)
}

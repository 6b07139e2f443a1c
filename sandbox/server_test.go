package sandbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conecta "github.com/Freidergandica/conecta-go"
	conectahttp "github.com/Freidergandica/conecta-go/http"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testCommerceID = "sandbox-commerce"

func newTestClient(t *testing.T, srv *Server, commerceID string) *conectahttp.Client {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := conectahttp.NewClient(commerceID, conectahttp.WithBaseURL(ts.URL+"/"))
	require.NoError(t, err)
	return client
}

func c2pRequest() conecta.C2PRequest {
	return conecta.C2PRequest{
		DestinationPhone: "04121234567",
		NationalID:       "V12345678",
		BankCode:         "0102",
		Amount:           conecta.MustParseAmount("10"),
		OTP:              "12345678",
	}
}

func TestServer_AcceptsSignedCalls(t *testing.T) {
	srv, err := NewServer(testCommerceID)
	require.NoError(t, err)
	client := newTestClient(t, srv, testCommerceID)
	ctx := context.Background()

	result, err := client.ChargeC2P(ctx, c2pRequest())
	require.NoError(t, err)
	assert.Equal(t, "00", result.Code.String())
	assert.Len(t, result.Reference.String(), 8)
	require.NotNil(t, result.Success)
	assert.True(t, *result.Success)

	rate, err := client.BCVRate(ctx, conecta.BCVRateRequest{Currency: "USD", ValueDate: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "36.5000", rate.Rate.String())
	assert.Equal(t, "2024-01-15", rate.ValueDate)

	status, err := client.OperationStatus(ctx, conecta.OperationStatusRequest{OperationID: "op-123"})
	require.NoError(t, err)
	assert.Equal(t, "op-123", status.ID.String())

	disperse, err := client.Disperse(ctx, conecta.DispersionRequest{
		Amount: conecta.MustParseAmount("10"),
		Date:   "01/15/2024",
		Recipients: []conecta.DispersionRecipient{{
			Name:          "Maria Perez",
			NationalID:    "V12345678",
			AccountNumber: "01020000000000000001",
			Amount:        conecta.MustParseAmount("10"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "00", disperse.Code.String())
}

func TestServer_RejectsWrongCommerce(t *testing.T) {
	srv, err := NewServer(testCommerceID)
	require.NoError(t, err)
	client := newTestClient(t, srv, "someone-else")

	_, err = client.ChargeC2P(context.Background(), c2pRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, conecta.ErrRemote))

	gwErr, ok := conecta.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, conecta.KindRemote, gwErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	assert.Equal(t, "401", gwErr.Code)
	assert.Equal(t, "firma invalida", gwErr.Message)
}

func TestSignatureMiddleware_TamperedBody(t *testing.T) {
	srv, err := NewServer(testCommerceID)
	require.NoError(t, err)

	endpoint := conecta.MustEndpoint(conecta.EndpointOperationStatus)
	_, signature, err := endpoint.Sign(testCommerceID, []byte(`{"Id":"op-123"}`))
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		signature  string
		wantStatus int
	}{
		{name: "valid", body: `{"Id":"op-123"}`, signature: signature, wantStatus: http.StatusOK},
		{name: "tampered", body: `{"Id":"op-124"}`, signature: signature, wantStatus: http.StatusUnauthorized},
		{name: "missing signature", body: `{"Id":"op-123"}`, signature: "", wantStatus: http.StatusUnauthorized},
		{name: "missing field", body: `{}`, signature: signature, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, endpoint.Path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(conectahttp.HeaderCommerce, testCommerceID)
			req.Header.Set(conectahttp.HeaderAuthorization, tt.signature)
			rec := httptest.NewRecorder()

			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"code":"401","message":"firma invalida"}`, rec.Body.String())
			}
		})
	}
}

func TestServer_UnknownPath(t *testing.T) {
	srv, err := NewServer(testCommerceID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/nope", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Scenarios(t *testing.T) {
	c2pPath := conecta.MustEndpoint(conecta.EndpointC2PCharge).Path
	srv, err := NewServer(testCommerceID)
	require.NoError(t, err)
	client := newTestClient(t, srv, testCommerceID)
	ctx := context.Background()

	t.Run("remote error", func(t *testing.T) {
		srv.SetScenario(c2pPath, Scenario{
			Status: http.StatusBadRequest,
			Body:   conecta.ErrorBody{Code: "41", Message: "saldo insuficiente"},
		})
		_, err := client.ChargeC2P(ctx, c2pRequest())
		gwErr, ok := conecta.AsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, conecta.KindRemote, gwErr.Kind)
		assert.Equal(t, "41", gwErr.Code)
		assert.Equal(t, "saldo insuficiente", gwErr.Message)
	})

	t.Run("malformed error", func(t *testing.T) {
		srv.SetScenario(c2pPath, Scenario{Status: http.StatusBadGateway})
		_, err := client.ChargeC2P(ctx, c2pRequest())
		gwErr, ok := conecta.AsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, conecta.KindMalformedRemote, gwErr.Kind)
		assert.Equal(t, "502", gwErr.Code)
		assert.Equal(t, "Bad Gateway", gwErr.Message)
	})

	t.Run("html error", func(t *testing.T) {
		srv.SetScenario(c2pPath, Scenario{Status: http.StatusInternalServerError, Body: "<html>down</html>"})
		_, err := client.ChargeC2P(ctx, c2pRequest())
		assert.True(t, errors.Is(err, conecta.ErrRemote))
		gwErr, ok := conecta.AsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, conecta.KindMalformedRemote, gwErr.Kind)
		assert.Equal(t, "Internal Server Error", gwErr.Message)
	})

	t.Run("embedded business error", func(t *testing.T) {
		srv.SetScenario(c2pPath, Scenario{
			Status: http.StatusOK,
			Body:   map[string]interface{}{"code": "51", "message": "fondos insuficientes", "success": false},
		})
		result, err := client.ChargeC2P(ctx, c2pRequest())
		require.NoError(t, err)
		assert.Equal(t, "51", result.Code.String())
		require.NotNil(t, result.Success)
		assert.False(t, *result.Success)
	})

	t.Run("reset", func(t *testing.T) {
		srv.Reset()
		result, err := client.ChargeC2P(ctx, c2pRequest())
		require.NoError(t, err)
		assert.Equal(t, "00", result.Code.String())
	})
}

func TestNewServer_RequiresCommerce(t *testing.T) {
	_, err := NewServer("  ")
	assert.ErrorIs(t, err, conecta.ErrMissingCommerceID)
}

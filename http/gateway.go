package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	conecta "github.com/Freidergandica/conecta-go"
	"github.com/Freidergandica/conecta-go/http/internal/helpers"
	"github.com/Freidergandica/conecta-go/validation"
)

// BCVRate queries the official BCV exchange rate for a currency and value date.
func (c *Client) BCVRate(ctx context.Context, req conecta.BCVRateRequest) (*conecta.BCVRateResponse, error) {
	if err := validation.ValidateBCVRateRequest(req); err != nil {
		return nil, err
	}

	var resp conecta.BCVRateResponse
	raw, err := c.call(ctx, conecta.EndpointBCVRate, req, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw
	return &resp, nil
}

// Change sends money back to a payer ("vuelto").
func (c *Client) Change(ctx context.Context, req conecta.ChangeRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateChangeRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointChange, req)
}

// ChargeC2P charges a payer via phone, bank and national id.
func (c *Client) ChargeC2P(ctx context.Context, req conecta.C2PRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateC2PRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointC2PCharge, req)
}

// ReverseC2P voids a prior C2P charge.
func (c *Client) ReverseC2P(ctx context.Context, req conecta.C2PReversalRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateC2PReversalRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointC2PReversal, req)
}

// Disperse pays out a batch of recipients.
func (c *Client) Disperse(ctx context.Context, req conecta.DispersionRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateDispersionRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointDispersion, req)
}

// GenerateOTP asks the payer's bank to send a one-time code. The caller then
// collects the code and calls ImmediateDebit with the same data.
func (c *Client) GenerateOTP(ctx context.Context, req conecta.OTPRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateOTPRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointGenerateOTP, req)
}

// ImmediateDebit executes a debit authorized by an OTP.
func (c *Client) ImmediateDebit(ctx context.Context, req conecta.ImmediateDebitRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateImmediateDebitRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointImmediateDebit, req)
}

// ImmediateCredit credits a recipient identified by phone.
func (c *Client) ImmediateCredit(ctx context.Context, req conecta.ImmediateCreditRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateImmediateCreditRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointImmediateCredit, req)
}

// ImmediateCreditAccount credits a recipient identified by a 20-digit account number.
func (c *Client) ImmediateCreditAccount(ctx context.Context, req conecta.AccountCreditRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateAccountCreditRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointImmediateCreditAccount, req)
}

// MandateByAccount registers a recurring-debit mandate tied to an account.
func (c *Client) MandateByAccount(ctx context.Context, req conecta.AccountMandateRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateAccountMandateRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointMandateByAccount, req)
}

// MandateByPhone registers a recurring-debit mandate tied to a phone.
func (c *Client) MandateByPhone(ctx context.Context, req conecta.PhoneMandateRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidatePhoneMandateRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointMandateByPhone, req)
}

// OperationStatus queries the status of a prior operation by id.
func (c *Client) OperationStatus(ctx context.Context, req conecta.OperationStatusRequest) (*conecta.OperationResult, error) {
	if err := validation.ValidateOperationStatusRequest(req); err != nil {
		return nil, err
	}
	return c.operation(ctx, conecta.EndpointOperationStatus, req)
}

// operation runs a validated call whose response is an OperationResult.
func (c *Client) operation(ctx context.Context, name conecta.EndpointName, req interface{}) (*conecta.OperationResult, error) {
	var result conecta.OperationResult
	raw, err := c.call(ctx, name, req, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// call signs req for the named endpoint, sends it and decodes a 2xx body into
// out. It returns the raw response body on success.
func (c *Client) call(ctx context.Context, name conecta.EndpointName, req interface{}, out interface{}) (json.RawMessage, error) {
	endpoint, ok := conecta.LookupEndpoint(name)
	if !ok {
		return nil, fmt.Errorf("unknown endpoint %s", name)
	}

	body, err := helpers.EncodeBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	_, signature, err := endpoint.Sign(c.commerceID, body)
	if err != nil {
		return nil, err
	}

	for _, hook := range c.onBeforeCall {
		if err := hook(ctx, endpoint, body); err != nil {
			return nil, err
		}
	}

	// Use provided context, apply timeout only if not already set
	reqCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeouts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeouts.RequestTimeout)
		defer cancel()
	}

	url := c.URL(endpoint)
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HeaderAuthorization, signature)
	httpReq.Header.Set(HeaderCommerce, c.commerceID)

	start := time.Now()
	event := conecta.CallEvent{
		Timestamp: start,
		Endpoint:  endpoint.Name,
		URL:       url,
		RequestID: uuid.NewString(),
	}
	event.Receipt = conecta.Receipt{
		RequestID: event.RequestID,
		Endpoint:  endpoint.Name,
		URL:       url,
		Signature: signature,
		Request:   json.RawMessage(body),
		Timestamp: start,
	}

	raw, callErr := c.send(httpReq, endpoint.Name, out, &event)

	event.Duration = time.Since(start)
	if callErr != nil {
		event.Type = conecta.CallEventFailure
		event.Error = callErr
	} else {
		event.Type = conecta.CallEventSuccess
	}
	for _, hook := range c.onAfterCall {
		hook(ctx, event)
	}

	return raw, callErr
}

// send performs the single HTTP exchange of a call and records the outcome on
// event. It never retries.
func (c *Client) send(httpReq *http.Request, name conecta.EndpointName, out interface{}, event *conecta.CallEvent) (json.RawMessage, error) {
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, conecta.NewTransportError(name, err)
	}
	defer httpResp.Body.Close()

	event.StatusCode = httpResp.StatusCode
	event.Receipt.StatusCode = httpResp.StatusCode

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		gwErr := conecta.NewTransportError(name, fmt.Errorf("failed to read response body: %w", err))
		gwErr.StatusCode = httpResp.StatusCode
		return nil, gwErr
	}
	event.Receipt.Response = helpers.ReceiptBody(respBody)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, helpers.ParseErrorResponse(name, httpResp, respBody)
	}

	if err := helpers.DecodeResult(respBody, out); err != nil {
		return nil, &conecta.GatewayError{
			Kind:       conecta.KindInvalidResponse,
			Endpoint:   name,
			StatusCode: httpResp.StatusCode,
			Err:        err,
		}
	}

	return json.RawMessage(respBody), nil
}

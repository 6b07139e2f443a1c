// Package gateway defines the interface for Conecta banking gateway operations.
//
// Callers that orchestrate checkout, payout or bank-account-change flows
// depend on this interface rather than on the HTTP client, so they can be
// tested against fakes.
package gateway

import (
	"context"

	conecta "github.com/Freidergandica/conecta-go"
)

// Interface defines one method per gateway endpoint.
//
// A nil error only means the gateway answered with a 2xx status. Business
// failures such as insufficient funds are reported inside the returned
// result and must be checked by the caller.
type Interface interface {
	// BCVRate queries the official exchange rate for a currency and value date.
	BCVRate(ctx context.Context, req conecta.BCVRateRequest) (*conecta.BCVRateResponse, error)

	// Change sends money back to a payer ("vuelto").
	Change(ctx context.Context, req conecta.ChangeRequest) (*conecta.OperationResult, error)

	// ChargeC2P charges a payer via phone, bank and national id.
	ChargeC2P(ctx context.Context, req conecta.C2PRequest) (*conecta.OperationResult, error)

	// ReverseC2P voids a prior C2P charge.
	ReverseC2P(ctx context.Context, req conecta.C2PReversalRequest) (*conecta.OperationResult, error)

	// Disperse pays out a batch of recipients.
	Disperse(ctx context.Context, req conecta.DispersionRequest) (*conecta.OperationResult, error)

	// GenerateOTP requests a one-time code for a later ImmediateDebit.
	GenerateOTP(ctx context.Context, req conecta.OTPRequest) (*conecta.OperationResult, error)

	// ImmediateDebit executes a debit authorized by an OTP.
	ImmediateDebit(ctx context.Context, req conecta.ImmediateDebitRequest) (*conecta.OperationResult, error)

	// ImmediateCredit credits a recipient identified by phone.
	ImmediateCredit(ctx context.Context, req conecta.ImmediateCreditRequest) (*conecta.OperationResult, error)

	// ImmediateCreditAccount credits a recipient identified by account number.
	ImmediateCreditAccount(ctx context.Context, req conecta.AccountCreditRequest) (*conecta.OperationResult, error)

	// MandateByAccount registers a recurring-debit mandate tied to an account.
	MandateByAccount(ctx context.Context, req conecta.AccountMandateRequest) (*conecta.OperationResult, error)

	// MandateByPhone registers a recurring-debit mandate tied to a phone.
	MandateByPhone(ctx context.Context, req conecta.PhoneMandateRequest) (*conecta.OperationResult, error)

	// OperationStatus queries the status of a prior operation.
	OperationStatus(ctx context.Context, req conecta.OperationStatusRequest) (*conecta.OperationResult, error)
}

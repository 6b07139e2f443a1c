// Package validation provides validation of Conecta gateway request records.
// Every record is validated before it is signed, so malformed input never
// reaches the bank.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	conecta "github.com/Freidergandica/conecta-go"
)

const (
	// ValueDateLayout is the layout of BCV value dates.
	ValueDateLayout = "2006-01-02"

	// DispersionDateLayout is the layout of bulk payout dates (MM/DD/YYYY).
	DispersionDateLayout = "01/02/2006"
)

var (
	// phoneRegex matches Venezuelan mobile numbers, local (04xx) or with country code (584xx).
	phoneRegex = regexp.MustCompile(`^(0|58)4\d{9}$`)

	// nationalIDRegex matches a document type letter followed by 5-9 digits.
	nationalIDRegex = regexp.MustCompile(`^[VEJPG]\d{5,9}$`)

	bankCodeRegex = regexp.MustCompile(`^\d{4}$`)
	accountRegex  = regexp.MustCompile(`^\d{20}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	otpRegex      = regexp.MustCompile(`^\d{4,8}$`)
)

// ValidatePhone validates a mobile phone number.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone cannot be empty")
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone format: %s (expected 04XXXXXXXXX or 584XXXXXXXXX)", phone)
	}
	return nil
}

// ValidateNationalID validates a national identity document such as "V12345678".
func ValidateNationalID(id string) error {
	if id == "" {
		return fmt.Errorf("national id cannot be empty")
	}
	if !nationalIDRegex.MatchString(id) {
		return fmt.Errorf("invalid national id format: %s (expected letter V, E, J, P or G followed by digits)", id)
	}
	return nil
}

// ValidateBankCode validates a four-digit bank code.
func ValidateBankCode(code string) error {
	if !bankCodeRegex.MatchString(code) {
		return fmt.Errorf("invalid bank code: %q (expected 4 digits)", code)
	}
	return nil
}

// ValidateAccountNumber validates a 20-digit account number.
func ValidateAccountNumber(account string) error {
	if !accountRegex.MatchString(account) {
		return fmt.Errorf("invalid account number: %q (expected 20 digits)", account)
	}
	return nil
}

// ValidateCurrency validates an ISO 4217 currency code.
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("invalid currency: %q (expected 3 upper-case letters)", currency)
	}
	return nil
}

// ValidateOTP validates a numeric one-time code.
func ValidateOTP(otp string) error {
	if !otpRegex.MatchString(otp) {
		return fmt.Errorf("invalid otp: expected 4 to 8 digits")
	}
	return nil
}

// ValidateAmount requires a strictly positive amount.
func ValidateAmount(amount conecta.Amount) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	return nil
}

// ValidateDate validates value against layout, rejecting partial forms.
func ValidateDate(value, layout string) error {
	if value == "" {
		return fmt.Errorf("date cannot be empty")
	}
	t, err := time.Parse(layout, value)
	if err != nil || t.Format(layout) != value {
		return fmt.Errorf("invalid date %q (expected layout %s)", value, layout)
	}
	return nil
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

// check runs field checks in order and wraps the first failure.
func check(endpoint conecta.EndpointName, checks ...error) error {
	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("%w: %s: %v", conecta.ErrInvalidRequest, endpoint, err)
		}
	}
	return nil
}

// ValidateBCVRateRequest validates a BCV rate lookup.
func ValidateBCVRateRequest(req conecta.BCVRateRequest) error {
	return check(conecta.EndpointBCVRate,
		ValidateCurrency(req.Currency),
		ValidateDate(req.ValueDate, ValueDateLayout),
	)
}

// ValidateChangeRequest validates a mobile-payment refund.
func ValidateChangeRequest(req conecta.ChangeRequest) error {
	return check(conecta.EndpointChange,
		ValidatePhone(req.DestinationPhone),
		ValidateNationalID(req.NationalID),
		ValidateBankCode(req.BankCode),
		ValidateAmount(req.Amount),
	)
}

// ValidateC2PRequest validates a C2P charge.
func ValidateC2PRequest(req conecta.C2PRequest) error {
	return check(conecta.EndpointC2PCharge,
		ValidatePhone(req.DestinationPhone),
		ValidateNationalID(req.NationalID),
		ValidateBankCode(req.BankCode),
		ValidateAmount(req.Amount),
		ValidateOTP(req.OTP),
	)
}

// ValidateC2PReversalRequest validates a C2P reversal.
func ValidateC2PReversalRequest(req conecta.C2PReversalRequest) error {
	return check(conecta.EndpointC2PReversal,
		ValidateNationalID(req.NationalID),
		ValidateBankCode(req.BankCode),
		required("reference", req.Reference),
	)
}

// ValidateDispersionRequest validates a bulk payout. The batch total must
// equal the sum of the recipient amounts.
func ValidateDispersionRequest(req conecta.DispersionRequest) error {
	checks := []error{
		ValidateAmount(req.Amount),
		ValidateDate(req.Date, DispersionDateLayout),
	}
	if len(req.Recipients) == 0 {
		checks = append(checks, fmt.Errorf("recipients cannot be empty"))
	}

	var total conecta.Amount
	for i, r := range req.Recipients {
		if err := required("name", r.Name); err != nil {
			checks = append(checks, fmt.Errorf("recipients[%d]: %w", i, err))
		}
		if err := ValidateNationalID(r.NationalID); err != nil {
			checks = append(checks, fmt.Errorf("recipients[%d]: %w", i, err))
		}
		if err := ValidateAccountNumber(r.AccountNumber); err != nil {
			checks = append(checks, fmt.Errorf("recipients[%d]: %w", i, err))
		}
		if err := ValidateAmount(r.Amount); err != nil {
			checks = append(checks, fmt.Errorf("recipients[%d]: %w", i, err))
		}
		total = total.Add(r.Amount)
	}
	if len(req.Recipients) > 0 && !total.Equal(req.Amount) {
		checks = append(checks, fmt.Errorf("amount %s does not match recipients total %s", req.Amount, total))
	}

	return check(conecta.EndpointDispersion, checks...)
}

// ValidateOTPRequest validates an OTP generation request.
func ValidateOTPRequest(req conecta.OTPRequest) error {
	return check(conecta.EndpointGenerateOTP,
		ValidateBankCode(req.BankCode),
		ValidateAmount(req.Amount),
		ValidatePhone(req.Phone),
		ValidateNationalID(req.NationalID),
	)
}

// ValidateImmediateDebitRequest validates an OTP-authorized debit.
func ValidateImmediateDebitRequest(req conecta.ImmediateDebitRequest) error {
	return check(conecta.EndpointImmediateDebit,
		ValidateBankCode(req.BankCode),
		ValidateAmount(req.Amount),
		ValidatePhone(req.Phone),
		ValidateNationalID(req.NationalID),
		required("name", req.Name),
		ValidateOTP(req.OTP),
	)
}

// ValidateImmediateCreditRequest validates a credit by phone.
func ValidateImmediateCreditRequest(req conecta.ImmediateCreditRequest) error {
	return check(conecta.EndpointImmediateCredit,
		ValidateBankCode(req.BankCode),
		ValidateNationalID(req.NationalID),
		ValidatePhone(req.Phone),
		ValidateAmount(req.Amount),
	)
}

// ValidateAccountCreditRequest validates a credit by account number.
func ValidateAccountCreditRequest(req conecta.AccountCreditRequest) error {
	return check(conecta.EndpointImmediateCreditAccount,
		ValidateNationalID(req.NationalID),
		ValidateAccountNumber(req.AccountNumber),
		ValidateAmount(req.Amount),
	)
}

// ValidateAccountMandateRequest validates a direct-debit mandate by account.
func ValidateAccountMandateRequest(req conecta.AccountMandateRequest) error {
	return check(conecta.EndpointMandateByAccount,
		ValidateNationalID(req.DocumentID),
		required("name", req.Name),
		ValidateAccountNumber(req.AccountNumber),
		ValidateAmount(req.Amount),
	)
}

// ValidatePhoneMandateRequest validates a direct-debit mandate by phone.
func ValidatePhoneMandateRequest(req conecta.PhoneMandateRequest) error {
	return check(conecta.EndpointMandateByPhone,
		ValidateNationalID(req.DocumentID),
		ValidatePhone(req.Phone),
		required("name", req.Name),
		ValidateBankCode(req.BankCode),
		ValidateAmount(req.Amount),
	)
}

// ValidateOperationStatusRequest validates an operation status lookup.
func ValidateOperationStatusRequest(req conecta.OperationStatusRequest) error {
	return check(conecta.EndpointOperationStatus,
		required("operation id", req.OperationID),
	)
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	conecta "github.com/Freidergandica/conecta-go"
	"github.com/Freidergandica/conecta-go/validation"
)

func bcvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bcv",
		Short: "Query the official BCV exchange rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			currency, _ := cmd.Flags().GetString("currency")
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format(validation.ValueDateLayout)
			}

			resp, err := s.client.BCVRate(cmd.Context(), conecta.BCVRateRequest{Currency: currency, ValueDate: date})
			if err != nil {
				return s.print(cmd, nil, err)
			}
			return s.print(cmd, resp.Raw, nil)
		},
	}

	cmd.Flags().StringP("currency", "c", "USD", "ISO 4217 currency code")
	cmd.Flags().StringP("date", "d", "", "Value date YYYY-MM-DD (default today)")
	addReceiptFlag(cmd)
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [operation-id]",
		Short: "Query the status of a prior operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			resp, err := s.client.OperationStatus(cmd.Context(), conecta.OperationStatusRequest{OperationID: args[0]})
			return s.printResult(cmd, resp, err)
		},
	}
	addReceiptFlag(cmd)
	return cmd
}

func otpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Ask the payer's bank to send a one-time code for an immediate debit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayer(cmd)
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			resp, err := s.client.GenerateOTP(cmd.Context(), conecta.OTPRequest{
				BankCode:   p.bank,
				Amount:     p.amount,
				Phone:      p.phone,
				NationalID: p.id,
			})
			return s.printResult(cmd, resp, err)
		},
	}
	addPayerFlags(cmd)
	addReceiptFlag(cmd)
	return cmd
}

func debitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debit",
		Short: "Execute an OTP-authorized immediate debit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayer(cmd)
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			otp, _ := cmd.Flags().GetString("otp")
			concept, _ := cmd.Flags().GetString("concept")

			resp, err := s.client.ImmediateDebit(cmd.Context(), conecta.ImmediateDebitRequest{
				BankCode:   p.bank,
				Amount:     p.amount,
				Phone:      p.phone,
				NationalID: p.id,
				Name:       name,
				OTP:        otp,
				Concept:    concept,
			})
			return s.printResult(cmd, resp, err)
		},
	}
	addPayerFlags(cmd)
	cmd.Flags().String("name", "", "Payer name")
	cmd.Flags().String("otp", "", "One-time code received by the payer")
	cmd.Flags().String("concept", "", "Payment concept")
	addReceiptFlag(cmd)
	return cmd
}

func creditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Credit a recipient by phone, or by account with --account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			account, _ := cmd.Flags().GetString("account")
			concept, _ := cmd.Flags().GetString("concept")
			id, _ := cmd.Flags().GetString("id")
			amount, err := readAmount(cmd)
			if err != nil {
				return err
			}

			if account != "" {
				resp, err := s.client.ImmediateCreditAccount(cmd.Context(), conecta.AccountCreditRequest{
					NationalID:    id,
					AccountNumber: account,
					Amount:        amount,
					Concept:       concept,
				})
				return s.printResult(cmd, resp, err)
			}

			bank, _ := cmd.Flags().GetString("bank")
			phone, _ := cmd.Flags().GetString("phone")
			resp, err := s.client.ImmediateCredit(cmd.Context(), conecta.ImmediateCreditRequest{
				BankCode:   bank,
				NationalID: id,
				Phone:      phone,
				Amount:     amount,
				Concept:    concept,
			})
			return s.printResult(cmd, resp, err)
		},
	}
	addPayerFlags(cmd)
	cmd.Flags().String("account", "", "20-digit account number (credits by account instead of phone)")
	cmd.Flags().String("concept", "", "Payment concept")
	addReceiptFlag(cmd)
	return cmd
}

func c2pCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "c2p",
		Short: "Charge a payer with a C2P mobile payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayer(cmd)
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			otp, _ := cmd.Flags().GetString("otp")
			concept, _ := cmd.Flags().GetString("concept")

			resp, err := s.client.ChargeC2P(cmd.Context(), conecta.C2PRequest{
				DestinationPhone: p.phone,
				NationalID:       p.id,
				BankCode:         p.bank,
				Amount:           p.amount,
				OTP:              otp,
				Concept:          concept,
			})
			return s.printResult(cmd, resp, err)
		},
	}
	addPayerFlags(cmd)
	cmd.Flags().String("otp", "", "Purchase key provided by the payer")
	cmd.Flags().String("concept", "", "Payment concept")
	addReceiptFlag(cmd)
	return cmd
}

func reverseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reverse",
		Short: "Void a prior C2P charge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("id")
			bank, _ := cmd.Flags().GetString("bank")
			reference, _ := cmd.Flags().GetString("reference")

			resp, err := s.client.ReverseC2P(cmd.Context(), conecta.C2PReversalRequest{
				NationalID: id,
				BankCode:   bank,
				Reference:  reference,
			})
			return s.printResult(cmd, resp, err)
		},
	}
	cmd.Flags().String("id", "", "Payer national id, e.g. V12345678")
	cmd.Flags().String("bank", "", "Payer bank code")
	cmd.Flags().String("reference", "", "Reference of the charge to void")
	addReceiptFlag(cmd)
	return cmd
}

func changeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change",
		Short: "Send a mobile-payment refund (vuelto) to a recipient phone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayer(cmd)
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			concept, _ := cmd.Flags().GetString("concept")

			resp, err := s.client.Change(cmd.Context(), conecta.ChangeRequest{
				DestinationPhone: p.phone,
				NationalID:       p.id,
				BankCode:         p.bank,
				Amount:           p.amount,
				Concept:          concept,
			})
			return s.printResult(cmd, resp, err)
		},
	}
	addPayerFlags(cmd)
	cmd.Flags().String("concept", "", "Payment concept")
	addReceiptFlag(cmd)
	return cmd
}

func disperseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disperse",
		Short: "Pay out a batch of recipients by account",
		Example: `  conecta disperse \
    --recipient "Ana Perez,V12345678,01020000000000000001,10.00" \
    --recipient "Luis Rojas,V87654321,01050000000000000002,5.50"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, _ := cmd.Flags().GetStringArray("recipient")
			if len(specs) == 0 {
				return fmt.Errorf("at least one --recipient is required")
			}
			recipients := make([]conecta.DispersionRecipient, 0, len(specs))
			var total conecta.Amount
			for _, spec := range specs {
				r, err := parseRecipient(spec)
				if err != nil {
					return err
				}
				recipients = append(recipients, r)
				total = total.Add(r.Amount)
			}

			// The batch total defaults to the sum of the recipients.
			if raw, _ := cmd.Flags().GetString("amount"); raw != "" {
				amount, err := conecta.ParseAmount(raw)
				if err != nil {
					return err
				}
				total = amount
			}
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format(validation.DispersionDateLayout)
			}
			reference, _ := cmd.Flags().GetString("reference")

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			resp, err := s.client.Disperse(cmd.Context(), conecta.DispersionRequest{
				Amount:     total,
				Date:       date,
				Reference:  reference,
				Recipients: recipients,
			})
			return s.printResult(cmd, resp, err)
		},
	}
	cmd.Flags().StringArray("recipient", nil, `Recipient as "name,id,account,amount" (repeatable)`)
	cmd.Flags().String("amount", "", "Batch total (default sum of recipients)")
	cmd.Flags().String("date", "", "Payout date MM/DD/YYYY (default today)")
	cmd.Flags().String("reference", "", "Batch reference")
	addReceiptFlag(cmd)
	return cmd
}

// parseRecipient reads a "name,id,account,amount" recipient.
func parseRecipient(spec string) (conecta.DispersionRecipient, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return conecta.DispersionRecipient{}, fmt.Errorf("invalid recipient %q (expected name,id,account,amount)", spec)
	}
	amount, err := conecta.ParseAmount(strings.TrimSpace(parts[3]))
	if err != nil {
		return conecta.DispersionRecipient{}, fmt.Errorf("recipient %q: %w", spec, err)
	}
	return conecta.DispersionRecipient{
		Name:          strings.TrimSpace(parts[0]),
		NationalID:    strings.TrimSpace(parts[1]),
		AccountNumber: strings.TrimSpace(parts[2]),
		Amount:        amount,
	}, nil
}

func mandateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mandate",
		Short: "Register a direct-debit mandate by --account or by --phone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, _ := cmd.Flags().GetString("account")
			phone, _ := cmd.Flags().GetString("phone")
			switch {
			case account == "" && phone == "":
				return fmt.Errorf("one of --account or --phone is required")
			case account != "" && phone != "":
				return fmt.Errorf("--account and --phone are mutually exclusive")
			}
			amount, err := readAmount(cmd)
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("id")
			name, _ := cmd.Flags().GetString("name")
			concept, _ := cmd.Flags().GetString("concept")

			if account != "" {
				resp, err := s.client.MandateByAccount(cmd.Context(), conecta.AccountMandateRequest{
					DocumentID:    id,
					Name:          name,
					AccountNumber: account,
					Amount:        amount,
					Concept:       concept,
				})
				return s.printResult(cmd, resp, err)
			}

			bank, _ := cmd.Flags().GetString("bank")
			resp, err := s.client.MandateByPhone(cmd.Context(), conecta.PhoneMandateRequest{
				DocumentID: id,
				Phone:      phone,
				Name:       name,
				BankCode:   bank,
				Amount:     amount,
				Concept:    concept,
			})
			return s.printResult(cmd, resp, err)
		},
	}
	addPayerFlags(cmd)
	cmd.Flags().String("account", "", "20-digit account to debit")
	cmd.Flags().String("name", "", "Account holder name")
	cmd.Flags().String("concept", "", "Mandate concept")
	addReceiptFlag(cmd)
	return cmd
}

func (s *session) printResult(cmd *cobra.Command, resp *conecta.OperationResult, err error) error {
	if err != nil {
		return s.print(cmd, nil, err)
	}
	return s.print(cmd, resp.Raw, nil)
}

type payer struct {
	bank   string
	phone  string
	id     string
	amount conecta.Amount
}

func addPayerFlags(cmd *cobra.Command) {
	cmd.Flags().String("bank", "", "Bank code, e.g. 0102")
	cmd.Flags().String("phone", "", "Mobile phone, e.g. 04121234567")
	cmd.Flags().String("id", "", "National id, e.g. V12345678")
	cmd.Flags().String("amount", "", "Amount in bolivares, e.g. 10.50")
}

func readPayer(cmd *cobra.Command) (payer, error) {
	amount, err := readAmount(cmd)
	if err != nil {
		return payer{}, err
	}
	bank, _ := cmd.Flags().GetString("bank")
	phone, _ := cmd.Flags().GetString("phone")
	id, _ := cmd.Flags().GetString("id")
	return payer{bank: bank, phone: phone, id: id, amount: amount}, nil
}

func readAmount(cmd *cobra.Command) (conecta.Amount, error) {
	raw, _ := cmd.Flags().GetString("amount")
	if raw == "" {
		return conecta.Amount{}, fmt.Errorf("--amount is required")
	}
	return conecta.ParseAmount(raw)
}

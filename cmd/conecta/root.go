package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	conecta "github.com/Freidergandica/conecta-go"
	"github.com/Freidergandica/conecta-go/encoding"
	conectahttp "github.com/Freidergandica/conecta-go/http"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "conecta",
		Short:         "Conecta - signed client for the Mi Banco payment gateway",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ~/.conecta/config.yaml then ./.conecta/config.yaml)")
	flags.String("commerce", "", "Commerce identifier, also the signing key (env CONECTA_COMMERCE_ID)")
	flags.String("base-url", "", "Gateway base URL")
	flags.Duration("timeout", 0, "Per-call timeout")
	flags.String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(bcvCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(otpCmd())
	rootCmd.AddCommand(debitCmd())
	rootCmd.AddCommand(creditCmd())
	rootCmd.AddCommand(c2pCmd())
	rootCmd.AddCommand(reverseCmd())
	rootCmd.AddCommand(changeCmd())
	rootCmd.AddCommand(disperseCmd())
	rootCmd.AddCommand(mandateCmd())
	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(sandboxCmd())
	rootCmd.AddCommand(mcpCmd())

	return rootCmd
}

// session is the per-invocation state shared by gateway subcommands.
type session struct {
	cfg    *Config
	logger *slog.Logger
	client *conectahttp.Client

	// mu guards last; mcp --http runs calls concurrently on one session.
	mu   sync.Mutex
	last *conecta.Receipt
}

func newSession(cmd *cobra.Command, opts ...conectahttp.ClientOption) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if cfg.CommerceID == "" {
		return nil, fmt.Errorf("%w: set --commerce, CONECTA_COMMERCE_ID or commerce_id in the config file", conecta.ErrMissingCommerceID)
	}

	s := &session{cfg: cfg, logger: logger}
	opts = append([]conectahttp.ClientOption{
		conectahttp.WithBaseURL(cfg.BaseURL),
		conectahttp.WithTimeouts(conecta.DefaultTimeouts.WithRequestTimeout(cfg.Timeout)),
		conectahttp.WithOnAfterCall(loggingHook(logger)),
		conectahttp.WithOnAfterCall(s.recordReceipt),
	}, opts...)

	s.client, err = conectahttp.NewClient(cfg.CommerceID, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) recordReceipt(_ context.Context, event conecta.CallEvent) {
	receipt := event.Receipt
	s.mu.Lock()
	s.last = &receipt
	s.mu.Unlock()
}

// lastReceipt returns the receipt of the most recent call, if any.
func (s *session) lastReceipt() *conecta.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// print writes the gateway response and, when requested, the encoded receipt.
func (s *session) print(cmd *cobra.Command, raw json.RawMessage, callErr error) error {
	out := cmd.OutOrStdout()
	if len(raw) > 0 {
		if err := printJSON(out, raw); err != nil {
			return err
		}
	}

	if withReceipt, _ := cmd.Flags().GetBool("receipt"); withReceipt {
		last := s.lastReceipt()
		if last == nil {
			return callErr
		}
		encoded, err := encoding.EncodeReceipt(*last)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "receipt: %s\n", encoded)
	}
	return callErr
}

func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintf(w, "%s\n", raw)
		return err
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}

// addReceiptFlag registers --receipt on a gateway subcommand.
func addReceiptFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("receipt", false, "Also print the base64 receipt of the call")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	conecta "github.com/Freidergandica/conecta-go"
	conectahttp "github.com/Freidergandica/conecta-go/http"
	mcpserver "github.com/Freidergandica/conecta-go/mcp/server"
	"github.com/Freidergandica/conecta-go/metrics"
	"github.com/Freidergandica/conecta-go/sandbox"
)

func signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [endpoint]",
		Short: "Print the signed message and signature for a JSON body, offline",
		Long: `Compute the signature the client would send for a request body.

The endpoint is a name such as c2p_charge or a path such as /MBc2p. The body
is read from --body or, when omitted, from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.CommerceID == "" {
				return conecta.ErrMissingCommerceID
			}

			endpoint, ok := conecta.LookupEndpoint(conecta.EndpointName(args[0]))
			if !ok {
				endpoint, ok = conecta.EndpointByPath(args[0])
			}
			if !ok {
				return fmt.Errorf("unknown endpoint %q", args[0])
			}

			body, _ := cmd.Flags().GetString("body")
			if body == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read body: %w", err)
				}
				body = strings.TrimSpace(string(data))
			}

			message, signature, err := endpoint.Sign(cfg.CommerceID, []byte(body))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "endpoint:  %s %s\n", endpoint.Name, endpoint.Path)
			fmt.Fprintf(out, "message:   %q\n", message)
			fmt.Fprintf(out, "signature: %s\n", signature)
			return nil
		},
	}
	cmd.Flags().String("body", "", "JSON request body")
	return cmd
}

func sandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run a local fake gateway that verifies signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)
			srv, err := sandbox.NewServer(cfg.CommerceID, sandbox.WithLogger(logger))
			if err != nil {
				return err
			}

			addr, _ := cmd.Flags().GetString("addr")
			logger.Info("sandbox_started", "addr", addr)
			return serve(cmd.Context(), addr, srv.Handler())
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	return cmd
}

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve read-only gateway lookups as MCP tools",
		Long: `Serve the bcv_rate and operation_status tools over MCP.

The server speaks stdio by default, or streamable HTTP with --http. Logs
always go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []conectahttp.ClientOption
			reg := prometheus.NewRegistry()
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			if metricsAddr != "" {
				collector, err := metrics.NewCollector(reg)
				if err != nil {
					return err
				}
				opts = append(opts, conectahttp.WithOnAfterCall(collector.Observe))
			}

			s, err := newSession(cmd, opts...)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				go func() {
					if err := serve(cmd.Context(), metricsAddr, metrics.Handler(reg)); err != nil {
						s.logger.Error("metrics_server_failed", "error", err)
					}
				}()
			}

			srv := mcpserver.New(s.client, "conecta", Version)
			srv.SetLogger(s.logger)

			httpAddr, _ := cmd.Flags().GetString("http")
			if httpAddr != "" {
				s.logger.Info("mcp_started", "transport", "http", "addr", httpAddr)
				return serve(cmd.Context(), httpAddr, srv.Handler())
			}
			s.logger.Info("mcp_started", "transport", "stdio")
			return srv.ServeStdio()
		},
	}
	cmd.Flags().String("http", "", "Serve streamable HTTP on this address instead of stdio")
	cmd.Flags().String("metrics-addr", "", "Expose Prometheus metrics on this address")
	return cmd
}

// serve runs handler on addr until ctx is done or SIGINT/SIGTERM arrives.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

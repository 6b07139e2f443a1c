package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	conecta "github.com/Freidergandica/conecta-go"
	conectahttp "github.com/Freidergandica/conecta-go/http"
)

func newLogger(format string, w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", format)
	}
}

// loggingHook logs one line per gateway call. Bodies and signatures are not
// logged.
func loggingHook(logger *slog.Logger) conectahttp.OnAfterCallFunc {
	return func(ctx context.Context, event conecta.CallEvent) {
		attrs := []any{
			"endpoint", event.Endpoint,
			"request_id", event.RequestID,
			"status", event.StatusCode,
			"duration", event.Duration,
		}
		if event.Type == conecta.CallEventFailure {
			logger.WarnContext(ctx, "gateway_call_failed", append(attrs, "error", event.Error)...)
			return
		}
		logger.InfoContext(ctx, "gateway_call", attrs...)
	}
}

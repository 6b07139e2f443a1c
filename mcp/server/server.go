// Package server exposes read-only Conecta gateway lookups as MCP tools.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	conecta "github.com/Freidergandica/conecta-go"
	"github.com/Freidergandica/conecta-go/gateway"
)

const (
	// ToolBCVRate is the name of the exchange rate tool.
	ToolBCVRate = "bcv_rate"

	// ToolOperationStatus is the name of the operation status tool.
	ToolOperationStatus = "operation_status"
)

// Server wraps an MCP server whose tools call the gateway.
type Server struct {
	mcpServer *mcpserver.MCPServer
	client    gateway.Interface
	logger    *slog.Logger
}

// New creates an MCP server with the read-only gateway tools registered.
// Operations that move money are not exposed as tools.
func New(client gateway.Interface, name, version string) *Server {
	s := &Server{
		mcpServer: mcpserver.NewMCPServer(name, version),
		client:    client,
		logger:    slog.Default(),
	}

	s.mcpServer.AddTool(mcpproto.NewTool(
		ToolBCVRate,
		mcpproto.WithDescription("Official BCV exchange rate for a currency on a value date"),
		mcpproto.WithString("currency", mcpproto.Required(), mcpproto.Description("ISO 4217 currency code, e.g. USD")),
		mcpproto.WithString("value_date", mcpproto.Required(), mcpproto.Description("Value date as YYYY-MM-DD")),
	), s.handleBCVRate)

	s.mcpServer.AddTool(mcpproto.NewTool(
		ToolOperationStatus,
		mcpproto.WithDescription("Status of a prior gateway operation"),
		mcpproto.WithString("id", mcpproto.Required(), mcpproto.Description("Operation identifier returned by the gateway")),
	), s.handleOperationStatus)

	return s
}

// SetLogger replaces the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Handler returns a streamable HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer)
}

// ServeStdio serves the MCP protocol over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying MCP server (for advanced usage).
func (s *Server) GetMCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func (s *Server) handleBCVRate(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	args := req.GetArguments()
	currency, _ := args["currency"].(string)
	valueDate, _ := args["value_date"].(string)

	resp, err := s.client.BCVRate(ctx, conecta.BCVRateRequest{
		Currency:  strings.ToUpper(strings.TrimSpace(currency)),
		ValueDate: strings.TrimSpace(valueDate),
	})
	if err != nil {
		s.logger.Warn("bcv rate lookup failed", "error", err)
		return errorResult(err), nil
	}
	return jsonResult(resp.Raw, resp)
}

func (s *Server) handleOperationStatus(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["id"].(string)

	resp, err := s.client.OperationStatus(ctx, conecta.OperationStatusRequest{OperationID: strings.TrimSpace(id)})
	if err != nil {
		s.logger.Warn("operation status lookup failed", "id", id, "error", err)
		return errorResult(err), nil
	}
	return jsonResult(resp.Raw, resp)
}

// jsonResult returns the gateway body as text, falling back to the decoded value.
func jsonResult(raw json.RawMessage, v interface{}) (*mcpproto.CallToolResult, error) {
	text := string(raw)
	if len(raw) == 0 {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		text = string(data)
	}
	return &mcpproto.CallToolResult{
		Content: []mcpproto.Content{mcpproto.NewTextContent(text)},
	}, nil
}

// errorResult reports a gateway failure to the model instead of failing the
// protocol request.
func errorResult(err error) *mcpproto.CallToolResult {
	text := err.Error()
	if gwErr, ok := conecta.AsGatewayError(err); ok && gwErr.Code != "" {
		text = fmt.Sprintf("gateway error %s: %s", gwErr.Code, gwErr.Message)
	}
	return &mcpproto.CallToolResult{
		Content: []mcpproto.Content{mcpproto.NewTextContent(text)},
		IsError: true,
	}
}

// Package sandbox provides a fake Conecta gateway for local development and
// tests. It authenticates requests exactly like the bank and answers with
// canned successful responses unless a Scenario overrides an endpoint.
package sandbox

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	conecta "github.com/Freidergandica/conecta-go"
)

// Scenario is a fixed response served for one endpoint path.
type Scenario struct {
	// Status is the HTTP status to answer with.
	Status int

	// Body is written verbatim when it is a string or []byte and as JSON otherwise.
	// A nil Body sends an empty response.
	Body interface{}
}

// Server is a fake gateway bound to a single commerce identifier.
type Server struct {
	commerceID string
	logger     *slog.Logger
	engine     *gin.Engine

	mu        sync.RWMutex
	scenarios map[string]Scenario
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScenario installs a scenario for path at construction time.
func WithScenario(path string, scenario Scenario) Option {
	return func(s *Server) {
		s.scenarios[path] = scenario
	}
}

// NewServer creates a fake gateway that accepts requests signed for commerceID.
func NewServer(commerceID string, opts ...Option) (*Server, error) {
	if strings.TrimSpace(commerceID) == "" {
		return nil, conecta.ErrMissingCommerceID
	}

	s := &Server{
		commerceID: commerceID,
		logger:     slog.Default(),
		scenarios:  make(map[string]Scenario),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(SignatureMiddleware(commerceID, s.logger))
	for _, endpoint := range conecta.Endpoints() {
		engine.POST(endpoint.Path, s.handle)
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, conecta.ErrorBody{Code: "404", Message: "recurso no encontrado"})
	})
	s.engine = engine

	return s, nil
}

// Handler returns the HTTP handler serving every gateway path.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetScenario overrides the response for path until Reset is called.
func (s *Server) SetScenario(path string, scenario Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios[path] = scenario
}

// Reset removes every scenario.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios = make(map[string]Scenario)
}

func (s *Server) scenario(path string) (Scenario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scenario, ok := s.scenarios[path]
	return scenario, ok
}

func (s *Server) handle(c *gin.Context) {
	endpoint, ok := EndpointFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if scenario, ok := s.scenario(endpoint.Path); ok {
		s.logger.Info("serving scenario", "endpoint", endpoint.Name, "status", scenario.Status)
		writeScenario(c, scenario)
		return
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(BodyFromContext(c), &fields); err != nil {
		c.JSON(http.StatusBadRequest, conecta.ErrorBody{Code: "400", Message: "cuerpo invalido"})
		return
	}

	c.JSON(http.StatusOK, cannedResponse(endpoint, fields))
}

func writeScenario(c *gin.Context, scenario Scenario) {
	switch body := scenario.Body.(type) {
	case nil:
		c.Status(scenario.Status)
	case string:
		c.Data(scenario.Status, "text/plain; charset=utf-8", []byte(body))
	case []byte:
		c.Data(scenario.Status, "application/octet-stream", body)
	default:
		c.JSON(scenario.Status, body)
	}
}

// cannedResponse builds the successful answer for endpoint.
func cannedResponse(endpoint conecta.Endpoint, fields map[string]interface{}) gin.H {
	if endpoint.Name == conecta.EndpointBCVRate {
		return gin.H{
			"code":       "00",
			"message":    "Consulta exitosa",
			"tipocambio": "36.5000",
			"fechavalor": fields["Fechavalor"],
		}
	}

	id := uuid.NewString()
	resp := gin.H{
		"code":      "00",
		"message":   "TRANSACCION EXITOSA",
		"reference": reference(id),
		"Id":        id,
		"success":   true,
	}
	if endpoint.Name == conecta.EndpointOperationStatus {
		resp["Id"] = fields["Id"]
	}
	return resp
}

// reference derives an eight-digit bank-style reference from an id.
func reference(id string) string {
	var n uint32
	for _, b := range []byte(id) {
		n = n*31 + uint32(b)
	}
	return fmt.Sprintf("%08d", n%100000000)
}

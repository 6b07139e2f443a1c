package sandbox

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	conecta "github.com/Freidergandica/conecta-go"
	conectahttp "github.com/Freidergandica/conecta-go/http"
)

const (
	// EndpointContextKey is the gin context key holding the matched conecta.Endpoint.
	EndpointContextKey = "conecta_endpoint"

	// BodyContextKey is the gin context key holding the raw request body.
	BodyContextKey = "conecta_body"
)

// invalidSignature is the body the gateway sends when authentication fails.
var invalidSignature = conecta.ErrorBody{Code: "401", Message: "firma invalida"}

// SignatureMiddleware authenticates gateway requests the way the bank does.
//
// The middleware:
//   - Resolves the endpoint from the request path, answering 404 for unknown paths
//   - Rejects a Commerce header that differs from commerceID
//   - Recomputes the HMAC signature from the raw body and compares it to Authorization
//   - Stores the endpoint and raw body in the gin context and calls c.Next()
func SignatureMiddleware(commerceID string, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		endpoint, ok := conecta.EndpointByPath(c.Request.URL.Path)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, conecta.ErrorBody{Code: "404", Message: "recurso no encontrado"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Warn("failed to read request body", "path", endpoint.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, conecta.ErrorBody{Code: "400", Message: "cuerpo invalido"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if c.GetHeader(conectahttp.HeaderCommerce) != commerceID {
			logger.Warn("unknown commerce", "endpoint", endpoint.Name)
			c.AbortWithStatusJSON(http.StatusUnauthorized, invalidSignature)
			return
		}

		if !endpoint.VerifySignature(commerceID, body, c.GetHeader(conectahttp.HeaderAuthorization)) {
			logger.Warn("signature mismatch", "endpoint", endpoint.Name)
			c.AbortWithStatusJSON(http.StatusUnauthorized, invalidSignature)
			return
		}

		logger.Info("signature verified", "endpoint", endpoint.Name)
		c.Set(EndpointContextKey, endpoint)
		c.Set(BodyContextKey, body)
		c.Next()
	}
}

// EndpointFromContext returns the endpoint matched by SignatureMiddleware.
func EndpointFromContext(c *gin.Context) (conecta.Endpoint, bool) {
	value, exists := c.Get(EndpointContextKey)
	if !exists {
		return conecta.Endpoint{}, false
	}
	endpoint, ok := value.(conecta.Endpoint)
	return endpoint, ok
}

// BodyFromContext returns the raw body stored by SignatureMiddleware.
func BodyFromContext(c *gin.Context) []byte {
	value, exists := c.Get(BodyContextKey)
	if !exists {
		return nil
	}
	body, _ := value.([]byte)
	return body
}

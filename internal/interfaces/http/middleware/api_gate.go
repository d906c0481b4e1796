package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"write-space.backend/internal/domain/entities"
	"write-space.backend/internal/interfaces/http/response"
	"write-space.backend/internal/usecases"
)

const (
	// AuthResultKey is the context key for the gate's AuthResult
	AuthResultKey = "apiAuth"
	// ApiKeyIDKey is the context key for the authenticated API key id
	ApiKeyIDKey = "api_key_id"
)

// Authenticator validates an Authorization header and charges the key's quota
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (*entities.AuthResult, error)
}

// rateLimitWriter keeps the quota headers in sync with the pending status
// until the response is committed. Only 2xx responses carry them.
type rateLimitWriter struct {
	gin.ResponseWriter
	headers map[string]string
}

func (w *rateLimitWriter) apply() {
	if w.ResponseWriter.Written() {
		return
	}
	status := w.ResponseWriter.Status()
	success := status >= 200 && status < 300
	h := w.ResponseWriter.Header()
	for k, v := range w.headers {
		if success {
			h.Set(k, v)
		} else {
			h.Del(k)
		}
	}
}

func (w *rateLimitWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
	w.apply()
}

func (w *rateLimitWriter) WriteHeaderNow() {
	w.apply()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *rateLimitWriter) Write(b []byte) (int, error) {
	w.apply()
	return w.ResponseWriter.Write(b)
}

func (w *rateLimitWriter) WriteString(s string) (int, error) {
	w.apply()
	return w.ResponseWriter.WriteString(s)
}

// APIGateMiddleware authenticates every request with an API key before any content query runs.
// Accepted requests get X-RateLimit-* headers on successful responses.
func APIGateMiddleware(gate Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := gate.Authenticate(c.Request.Context(), c.GetHeader(AuthorizationHeader))
		if err != nil {
			response.Error(c, err)
			return
		}

		keyID := result.KeyID.String()
		c.Set(AuthResultKey, result)
		c.Set(ApiKeyIDKey, keyID)

		// plain string key, read by pkg/logger
		ctx := context.WithValue(c.Request.Context(), "api_key_id", keyID)
		c.Request = c.Request.WithContext(ctx)

		c.Writer = &rateLimitWriter{
			ResponseWriter: c.Writer,
			headers:        usecases.RateLimitHeaders(result),
		}

		c.Next()
	}
}

// GetAuthResult returns the gate result stored for this request
func GetAuthResult(c *gin.Context) (*entities.AuthResult, bool) {
	v, exists := c.Get(AuthResultKey)
	if !exists {
		return nil, false
	}
	result, ok := v.(*entities.AuthResult)
	return result, ok
}

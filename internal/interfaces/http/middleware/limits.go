package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"write-space.backend/internal/interfaces/http/response"
	"write-space.backend/pkg/logger"
	"write-space.backend/pkg/metrics"
)

// TimeoutMiddleware bounds every request with a deadline that propagates to the data store.
// A request whose deadline passed before anything was written gets 504.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			metrics.HTTPRejectedTotal.WithLabelValues("timeout").Inc()
			response.ErrorWithStatus(c, http.StatusGatewayTimeout, response.MsgRequestTimeout)
		}
	}
}

// ConcurrencyLimit caps in-flight requests. Requests wait up to queueTimeout for a slot, then get 503.
func ConcurrencyLimit(maxInFlight int64, queueTimeout time.Duration) gin.HandlerFunc {
	if maxInFlight <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(maxInFlight)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if queueTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, queueTimeout)
			defer cancel()
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			metrics.HTTPRejectedTotal.WithLabelValues("busy").Inc()
			logger.Warn(c.Request.Context(), "Concurrency limit reached",
				zap.String("path", c.Request.URL.Path),
				zap.Int64("max_in_flight", maxInFlight),
			)
			response.ErrorWithStatus(c, http.StatusServiceUnavailable, response.MsgServerBusy)
			return
		}
		metrics.HTTPInFlight.Inc()
		defer func() {
			metrics.HTTPInFlight.Dec()
			sem.Release(1)
		}()

		c.Next()
	}
}

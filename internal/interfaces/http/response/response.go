package response

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/pkg/logger"
	"write-space.backend/pkg/utils"
)

// Error bodies written outside the usecases.
const (
	// MsgRequestTimeout is sent with 504 when the request deadline passes.
	MsgRequestTimeout = "Request timeout"
	// MsgServerBusy is sent with 503 when no request slot frees up in time.
	MsgServerBusy = "Server busy"
	// MsgEndpointNotFound is sent for unrouted paths.
	MsgEndpointNotFound = "Endpoint not found"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Data wraps a payload in the {"data": ...} envelope
func Data(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

// Paginated sends a list payload with its pagination metadata
func Paginated(c *gin.Context, data interface{}, meta utils.PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{
		"data":       data,
		"pagination": meta,
	})
}

// Error sends an error response as {"error": message}
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError && errors.Is(c.Request.Context().Err(), context.DeadlineExceeded) {
		appErr = domainerrors.Timeout(MsgRequestTimeout)
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	body := gin.H{"error": appErr.Message}
	if appErr.Status == http.StatusTooManyRequests && appErr.RetryAfter > 0 {
		secs := int64(math.Ceil(appErr.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.FormatInt(secs, 10))
		body["retry_after"] = secs
	}

	c.AbortWithStatusJSON(appErr.Status, body)
}

// ErrorWithStatus sends an error response with a specific status and message
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func toAppError(err error) *domainerrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return domainerrors.Timeout(MsgRequestTimeout)
	}

	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("Not found")
	case errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrBadRequest):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized("Unauthorized")
	case errors.Is(err, domainerrors.ErrForbidden):
		return domainerrors.Forbidden("Forbidden")
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.Conflict(err.Error())
	case errors.Is(err, domainerrors.ErrTimeout):
		return domainerrors.Timeout(MsgRequestTimeout)
	case errors.Is(err, domainerrors.ErrUnavailable):
		return domainerrors.Unavailable(MsgServerBusy)
	}
	return domainerrors.InternalError(err)
}

package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"botgate/internal/errors"
	"botgate/internal/logger"
)

// RequestID tags every request with a correlation ID, generating one when
// the caller did not supply it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorHandler recovers panics and renders queued handler errors as uniform
// JSON error responses.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		var err error

		if recovered != nil {
			logger.Default().WithFields(map[string]interface{}{
				"panic":  recovered,
				"stack":  string(debug.Stack()),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("panic recovered")

			err = errors.NewAppError(
				errors.ErrCodeInternal,
				"Internal server error",
				nil,
			).WithRequestID(getRequestID(c))
		}

		handleError(c, err)
	})
}

// HandleError renders errors queued on the context by handlers.
func HandleError(c *gin.Context) {
	c.Next()

	if len(c.Errors) > 0 {
		handleError(c, c.Errors.Last().Err)
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *errors.AppError
	if errors.IsAppError(err) {
		appErr = errors.GetAppError(err)
	} else {
		appErr = errors.WrapError(err, errors.ErrCodeInternal, "Internal server error")
	}

	if appErr.RequestID == "" {
		appErr = appErr.WithRequestID(getRequestID(c))
	}

	logError(c, appErr)

	response := errors.NewErrorResponse(appErr, c.Request.URL.Path)
	c.Header("Content-Type", "application/json")
	c.JSON(appErr.HTTPStatus(), response)
	c.Abort()
}

func logError(c *gin.Context, err *errors.AppError) {
	fields := map[string]interface{}{
		"error_code": err.Code,
		"severity":   err.Severity,
		"request_id": err.RequestID,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"ip":         c.ClientIP(),
	}
	if err.Details != "" {
		fields["details"] = err.Details
	}
	if err.Cause != nil {
		fields["cause"] = err.Cause.Error()
	}
	logger.Default().WithFields(fields).Error("%s", err.Message)
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
)

// ErrorHandler logs errors handlers attached to the context. Server-side
// failures are logged at error level with their full cause chain; client
// errors at debug.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			status := handler.StatusFor(e.Err)
			event := log.ZL.Debug()
			if status >= http.StatusInternalServerError {
				event = log.ZL.Error()
			}
			event.
				Err(e.Err).
				Int("status", status).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("Request error")
		}

		if !c.Writer.Written() {
			err := c.Errors.Last().Err
			status := handler.StatusFor(err)
			message := err.Error()
			if status >= http.StatusInternalServerError {
				message = "internal server error"
			}
			c.JSON(status, handler.NewErrorResponse(message))
		}
	}
}

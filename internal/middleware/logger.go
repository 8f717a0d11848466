package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
)

// Logger returns a middleware that logs HTTP requests
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()

		event := log.ZL.Info()
		msg := "Request processed"
		switch {
		case status >= 500:
			event = log.ZL.Error()
			msg = "Server error"
		case status >= 400:
			event = log.ZL.Warn()
			msg = "Client error"
		}

		event = event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent())
		if caller, ok := handler.CallerFrom(c); ok {
			event = event.Str("caller_id", caller.UserID.String()).Str("role", string(caller.Role))
		}
		event.Msg(msg)
	}
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/pkg/logctx"
)

// AccessLogMiddleware logs HTTP access using the request-scoped logger
// previously attached by RequestLoggerMiddleware.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l, ok := c.Get(logctx.KeyLogger)
		if !ok {
			return
		}
		lg, ok := l.(*zap.SugaredLogger)
		if !ok || lg == nil {
			return
		}
		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		logAccess(lg, c.Writer.Status(), fields)
	}
}

func logAccess(lg *zap.SugaredLogger, status int, fields []any) {
	if status >= 500 {
		lg.Errorw("http_access", fields...)
		return
	}
	lg.Infow("http_access", fields...)
}

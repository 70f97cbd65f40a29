package middleware

import (
	"time"

	"github.com/Baaaki/inmobiliaria-api/internal/apperrors"
	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger logs one line per request in place of gin's default logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		// AuthMiddleware replaces c.Request, so the identity is visible here
		// once the chain has run.
		if claims, ok := IdentityFromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("user_id", claims.ID.String()))
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.String("error_kind", string(apperrors.KindOf(last.Err))))
		}

		logger.Log.Log(level, "HTTP request", fields...)
	}
}

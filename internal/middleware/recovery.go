package middleware

import (
	"fmt"
	"io"
	"net/http"

	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panicking handler into a 500. Outside production the
// response carries the panic value and the stack of the panicking goroutine.
func Recovery(environment string) gin.HandlerFunc {
	exposeDetail := environment != "production"

	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		stack := zap.Stack("stack")
		logger.Log.Error("Panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			stack,
		)

		body := gin.H{"error": "internal server error"}
		if exposeDetail {
			body["detail"] = fmt.Sprint(recovered)
			body["stack"] = stack.String
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/Baaaki/inmobiliaria-api/internal/apperrors"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/utils"
	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "claims"

type claimsContextKey struct{}

var (
	errAuthRequired = apperrors.New(apperrors.KindUnauthorized, "authorization required")
	errInvalidToken = apperrors.New(apperrors.KindUnauthorized, "invalid or expired token")
	errForbidden    = apperrors.New(apperrors.KindForbidden, "insufficient permissions")
)

// AuthMiddleware authenticates the bearer token. Every verification failure
// yields the same 401; the cause is only logged.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(errAuthRequired)
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			_ = c.Error(errInvalidToken)
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(strings.TrimSpace(tokenString), jwtSecret)
		if err != nil {
			logger.Log.Debug("Token rejected",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			_ = c.Error(errInvalidToken)
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), claimsContextKey{}, claims))

		c.Next()
	}
}

// RequireRole runs after AuthMiddleware and lets through only the listed
// roles. Roles are matched exactly; superadmin does not imply agente.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			_ = c.Error(errAuthRequired)
			c.Abort()
			return
		}

		if !slices.Contains(roles, claims.Role) {
			logger.Log.Warn("Role not allowed",
				zap.String("user_id", claims.ID.String()),
				zap.String("role", string(claims.Role)),
				zap.String("path", c.FullPath()),
			)
			_ = c.Error(errForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the identity set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*utils.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// IdentityFromContext is CurrentUser for code that only holds a context.Context.
func IdentityFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*utils.Claims)
	return claims, ok
}

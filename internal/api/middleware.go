package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pccr10001/ofonomock/internal/auth"
	"github.com/pccr10001/ofonomock/pkg/logger"
)

// AuthMiddleware requires a bearer token when a is enabled and lets
// everything through otherwise. Websocket clients may pass the token as the
// "token" query parameter instead.
func AuthMiddleware(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil || !a.Enabled() {
			c.Next()
			return
		}

		token := c.Query("token")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				logger.Log.Warn("Auth Middleware: Missing Authorization header")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Log.Warnf("Auth Middleware: Invalid header format: %s", authHeader)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
				return
			}
			token = parts[1]
		}

		claims, err := a.ValidateToken(token)
		if err != nil {
			logger.Log.Warnf("Auth Middleware: Token validation failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token: " + err.Error()})
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}

// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/filemart/internal/i18n"
	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.LocalizedError(c, http.StatusUnauthorized, "UNAUTHORIZED", i18n.KeyAuthRequired)
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			utils.LocalizedError(c, http.StatusUnauthorized, "UNAUTHORIZED", i18n.KeyAuthInvalidToken)
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.LocalizedError(c, http.StatusUnauthorized, "UNAUTHORIZED", i18n.KeyAuthTokenExpired)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := utils.GetUserTypeFromContext(c)
		if !exists || userType != string(models.UserTypeAdmin) {
			utils.LocalizedError(c, http.StatusForbidden, "FORBIDDEN", i18n.KeyAdminAccessDenied)
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the caller identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.Next()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// Extract token from "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c *gin.Context, claims *utils.JWTClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("user_type", claims.UserType)
}

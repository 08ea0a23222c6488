package middleware

import (
	"net/http"
	"strings"

	"cofeed/pkg/apperror"
	"cofeed/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: missing authorization header", "code": "not_signed_in"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid authorization header format", "code": "not_signed_in"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil || claims.UserID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid token", "code": "not_signed_in"})
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// CurrentUserID resolves the caller set by AuthMiddleware. Handlers pass the
// result explicitly into use cases; nothing below the controller reads it from
// the request.
func CurrentUserID(c *gin.Context) (string, error) {
	userID := c.GetString(userIDKey)
	if userID == "" {
		return "", apperror.ErrNotSignedIn
	}
	return userID, nil
}

// SetUserID is used by tests and internal routes that authenticate differently.
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

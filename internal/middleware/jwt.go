package middleware

import (
	"ecommerce_api/internal/apperr"  // Application errors
	"ecommerce_api/internal/service" // Token verification
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	UserIDKey = "userID"
	ClaimsKey = "claims"
)

// JWTAuthMiddleware validates access tokens and extracts user information
func JWTAuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")           // Extract the token string
		claims, err := auth.Authenticate(c.Request.Context(), tokenStr) // Parse and check revocation
		if err != nil {
			status, msg := http.StatusInternalServerError, "Internal server error"
			if appErr, ok := apperr.As(err); ok {
				status, msg = appErr.Status(), appErr.Message // Invalid, expired or revoked
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}
		c.Set(UserIDKey, claims.UserID) // Store userID in context
		c.Set(ClaimsKey, claims)        // Keep claims for logout
		c.Next()                        // Proceed to the next handler
	}
}

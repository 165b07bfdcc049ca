package api

import (
	"ecommerce_api/internal/middleware" // Context keys
	"ecommerce_api/internal/service"    // Business rules
	"ecommerce_api/internal/utils"      // Token claims
	"net/http"                          // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest is the payload of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`        // Display name
	Email    string `json:"email" binding:"required,email"` // Login email
	Password string `json:"password" binding:"required"`    // Plain password, hashed before storage
}

// LoginRequest is the payload of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// RefreshRequest is the payload of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"` // Refresh token from login
}

// RegisterHandler creates a user account
func RegisterHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			respondError(c, err) // Validation or duplicate email
			return
		}
		c.JSON(http.StatusCreated, user) // Password is never serialized
	}
}

// LoginHandler authenticates a user and returns an access and a refresh token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		pair, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}

// RefreshHandler exchanges a refresh token for a new access token
func RefreshHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		pair, err := auth.Refresh(c.Request.Context(), req.RefreshToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}

// LogoutHandler revokes the access token used for the request
func LogoutHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.MustGet(middleware.ClaimsKey).(*utils.Claims) // Set by JWTAuthMiddleware
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := auth.Logout(c.Request.Context(), claims); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

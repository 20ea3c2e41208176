package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/utils"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateJWT(token string) (*utils.Claims, error)
}

func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperr.Unauthorized("Missing authorization header"))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abort(c, apperr.Unauthorized("Invalid token"))
			return
		}
		claims, err := tokens.ValidateJWT(strings.TrimSpace(tokenString))
		if errors.Is(err, utils.ErrTokenExpired) {
			abort(c, apperr.Unauthorized("Token has expired"))
			return
		}
		if err != nil {
			abort(c, apperr.Unauthorized("Invalid token"))
			return
		}

		// Set user info in the context for handlers to use
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UserRoleKey) != string(models.RoleAdmin) {
			abort(c, apperr.Forbidden("Access denied"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err *apperr.Error) {
	_ = c.Error(err)
	c.Abort()
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/services"
)

// Context keys set by the middleware chain.
const (
	UserIDKey      = "userID"
	AccessTokenKey = "accessToken"
)

// Auth validates the bearer token and stores the user ID in the context
func Auth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or malformed"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := authService.ValidateAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(AccessTokenKey, token)
		c.Next()
	}
}

// StaffOnly restricts a route group to staff accounts. Must run after Auth.
func StaffOnly(userService *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, exists := c.Get(UserIDKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		user, err := userService.GetUserByID(userIDValue.(uuid.UUID))
		if err != nil || !user.IsStaff {
			c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

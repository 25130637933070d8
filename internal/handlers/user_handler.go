package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/middleware"
	"github.com/mpgepmc/backend/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Home returns the authenticated user's profile
func (h *UserHandler) Home(c *gin.Context) {
	userIDValue, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userService.GetUserByID(userIDValue.(uuid.UUID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"mobile_number": user.MobileNumber,
			"full_name":     user.FullName(),
			"first_name":    user.FirstName,
			"middle_name":   user.MiddleName,
			"last_name":     user.LastName,
			"gender":        user.Gender,
			"custom_gender": user.CustomGender,
			"date_of_birth": user.DateOfBirth.Format("2006-01-02"),
			"is_active":     user.IsActive,
			"date_joined":   user.DateJoined,
		},
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/middleware"
	"github.com/mpgepmc/backend/internal/services"
)

type PasswordHandler struct {
	resetService *services.PasswordResetService
	userService  *services.UserService
}

func NewPasswordHandler(resetService *services.PasswordResetService, userService *services.UserService) *PasswordHandler {
	return &PasswordHandler{
		resetService: resetService,
		userService:  userService,
	}
}

// Forgot requests a password reset link. The response is identical for
// registered and unregistered emails.
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resetService.Request(req.Email); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If that email is registered, a password reset link has been sent.",
	})
}

func (h *PasswordHandler) parseResetLink(c *gin.Context) (uuid.UUID, string, bool) {
	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		respondServiceError(c, services.ErrResetTokenInvalid)
		return uuid.Nil, "", false
	}
	token := c.Param("token")
	if token == "" {
		respondServiceError(c, services.ErrResetTokenInvalid)
		return uuid.Nil, "", false
	}
	return userID, token, true
}

// CheckResetLink validates a reset link without consuming it
func (h *PasswordHandler) CheckResetLink(c *gin.Context) {
	userID, token, ok := h.parseResetLink(c)
	if !ok {
		return
	}

	if err := h.resetService.ValidateToken(userID, token); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// Reset consumes the token and sets the new password
func (h *PasswordHandler) Reset(c *gin.Context) {
	userID, token, ok := h.parseResetLink(c)
	if !ok {
		return
	}

	var req struct {
		NewPassword     string `json:"new_password" binding:"required"`
		PasswordConfirm string `json:"password_confirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.NewPassword != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match."})
		return
	}

	if err := h.resetService.Confirm(userID, token, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your password has been reset successfully. Please sign in."})
}

// Change updates the password of the authenticated user
func (h *PasswordHandler) Change(c *gin.Context) {
	userIDValue, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		OldPassword     string `json:"old_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
		PasswordConfirm string `json:"password_confirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.NewPassword != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match."})
		return
	}

	user, err := h.userService.GetUserByID(userIDValue.(uuid.UUID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.resetService.Change(user, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully."})
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/middleware"
	"github.com/mpgepmc/backend/internal/services"
	"github.com/mpgepmc/backend/internal/session"
)

// unverifiedEmailKey is the session key holding the email awaiting OTP
// verification.
const unverifiedEmailKey = "unverified_email"

type AuthHandler struct {
	authService *services.AuthService
	sessions    session.Store
}

func NewAuthHandler(authService *services.AuthService, sessions session.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// Signup handles user registration
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		FirstName       string `json:"first_name" binding:"required"`
		MiddleName      string `json:"middle_name"`
		LastName        string `json:"last_name" binding:"required"`
		Gender          string `json:"gender" binding:"required"`
		CustomGender    string `json:"custom_gender"`
		DateOfBirth     string `json:"date_of_birth" binding:"required"`
		Email           string `json:"email" binding:"required"`
		MobileNumber    string `json:"mobile_number" binding:"required"`
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"password_confirm" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Password != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match."})
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date of birth. Use the YYYY-MM-DD format."})
		return
	}

	user, err := h.authService.Signup(services.SignupInput{
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		CustomGender: req.CustomGender,
		DateOfBirth:  dob,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.rememberUnverified(c, user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful! Check your email for the verification code.",
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
	})
}

// SignIn handles user login
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, refreshToken, user, err := h.authService.SignIn(req.Email, req.Password)
	if err != nil {
		// An unverified account is redirected into the OTP flow.
		if errors.Is(err, services.ErrVerificationPending) || errors.Is(err, services.ErrVerificationRequired) {
			h.rememberUnverified(c, req.Email)
			sErr := err.(*services.StateError)
			c.JSON(http.StatusForbidden, gin.H{
				"error":                 sErr.Message,
				"code":                  sErr.Code,
				"verification_required": true,
			})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Welcome back, " + user.FirstName + "!",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"is_staff":   user.IsStaff,
		},
	})
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
	})
}

// Logout handles user logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accessToken := c.GetString(middleware.AccessTokenKey)
	if err := h.authService.Logout(userID.(uuid.UUID), accessToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	if sid := c.GetString(middleware.SessionIDKey); sid != "" {
		_ = h.sessions.Destroy(c.Request.Context(), sid)
	}

	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out successfully."})
}

func (h *AuthHandler) rememberUnverified(c *gin.Context, email string) {
	sid := c.GetString(middleware.SessionIDKey)
	if sid == "" {
		return
	}
	if err := h.sessions.Set(c.Request.Context(), sid, unverifiedEmailKey, email); err != nil {
		// The OTP flow will ask the user to sign in again.
		return
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mpgepmc/backend/internal/middleware"
	"github.com/mpgepmc/backend/internal/services"
	"github.com/mpgepmc/backend/internal/session"
)

type OTPHandler struct {
	otpService  *services.OTPService
	userService *services.UserService
	sessions    session.Store
}

func NewOTPHandler(otpService *services.OTPService, userService *services.UserService, sessions session.Store) *OTPHandler {
	return &OTPHandler{
		otpService:  otpService,
		userService: userService,
		sessions:    sessions,
	}
}

func (h *OTPHandler) pendingEmail(c *gin.Context) (string, bool) {
	sid := c.GetString(middleware.SessionIDKey)
	if sid == "" {
		return "", false
	}
	email, err := h.sessions.Get(c.Request.Context(), sid, unverifiedEmailKey)
	if err != nil || email == "" {
		return "", false
	}
	return email, true
}

func (h *OTPHandler) clearPending(c *gin.Context) {
	if sid := c.GetString(middleware.SessionIDKey); sid != "" {
		_ = h.sessions.Delete(c.Request.Context(), sid, unverifiedEmailKey)
	}
}

// VerifyStatus reports which email is pending verification for this session
func (h *OTPHandler) VerifyStatus(c *gin.Context) {
	email, ok := h.pendingEmail(c)
	if !ok {
		respondServiceError(c, services.ErrVerificationNoSession)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email})
}

// Verify checks the submitted OTP code and activates the account
func (h *OTPHandler) Verify(c *gin.Context) {
	email, ok := h.pendingEmail(c)
	if !ok {
		respondServiceError(c, services.ErrVerificationNoSession)
		return
	}

	var req struct {
		OTPCode string `json:"otp_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			h.clearPending(c)
			respondServiceError(c, services.ErrVerificationNoSession)
			return
		}
		respondServiceError(c, err)
		return
	}

	if user.IsActive {
		h.clearPending(c)
		c.JSON(http.StatusOK, gin.H{"message": services.ErrAccountAlreadyActive.Message})
		return
	}

	if err := h.otpService.Verify(user, req.OTPCode); err != nil {
		respondServiceError(c, err)
		return
	}

	h.clearPending(c)
	c.JSON(http.StatusOK, gin.H{"message": "Account successfully verified! Please sign in."})
}

// Resend issues a new OTP once the current one has expired
func (h *OTPHandler) Resend(c *gin.Context) {
	email, ok := h.pendingEmail(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": services.ErrVerificationNoSession.Message})
		return
	}

	user, err := h.userService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found."})
			return
		}
		respondServiceError(c, err)
		return
	}

	if user.IsActive {
		h.clearPending(c)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": services.ErrAccountAlreadyActive.Message})
		return
	}

	if err := h.otpService.Resend(user); err != nil {
		var sErr *services.StateError
		if errors.As(err, &sErr) {
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": sErr.Message, "code": sErr.Code})
			return
		}
		var dErr *services.DeliveryError
		if errors.As(err, &dErr) {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to send new OTP."})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "New OTP sent to your email!"})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mpgepmc/backend/internal/services"
	"github.com/mpgepmc/backend/pkg/validation"
)

// respondServiceError maps the service error taxonomy onto HTTP responses.
// Every failure becomes a non-throwing JSON body; nothing propagates as an
// unhandled fault.
func respondServiceError(c *gin.Context, err error) {
	var vErr *validation.Error
	var sErr *services.StateError
	var dErr *services.DeliveryError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "code": vErr.Code})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": services.ErrConflict.Error()})
	case errors.As(err, &sErr):
		c.JSON(stateStatus(sErr), gin.H{"error": sErr.Message, "code": sErr.Code})
	case errors.As(err, &dErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not send the email. Please try again later."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred. Please try again."})
	}
}

func stateStatus(err *services.StateError) int {
	switch err {
	case services.ErrNotRegistered, services.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case services.ErrVerificationPending, services.ErrVerificationRequired:
		return http.StatusForbidden
	case services.ErrOTPNotExpired:
		return http.StatusTooManyRequests
	case services.ErrResetTokenExpired, services.ErrResetTokenUsed:
		return http.StatusGone
	default:
		return http.StatusBadRequest
	}
}

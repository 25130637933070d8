package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mpgepmc/backend/internal/services"
)

type ValidationHandler struct {
	liveValidation *services.LiveValidationService
}

func NewValidationHandler(liveValidation *services.LiveValidationService) *ValidationHandler {
	return &ValidationHandler{liveValidation: liveValidation}
}

// Validate answers live per-field validation requests. It always returns
// {is_valid, error} and never an unhandled failure.
func (h *ValidationHandler) Validate(c *gin.Context) {
	var req struct {
		Field        string `json:"field"`
		Value        string `json:"value"`
		Gender       string `json:"gender"`
		CustomGender string `json:"custom_gender"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.Field == "" || req.Value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"is_valid": false, "error": "Missing field or value"})
		return
	}

	isValid, message := h.liveValidation.Check(req.Field, req.Value, req.Gender, req.CustomGender)
	c.JSON(http.StatusOK, gin.H{"is_valid": isValid, "error": message})
}

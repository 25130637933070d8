package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/models"
	"github.com/mpgepmc/backend/internal/services"
)

// AdminHandler exposes the mobile validation rule table and a user listing
// to staff accounts.
type AdminHandler struct {
	mobileRules *services.MobileRuleService
	userService *services.UserService
}

func NewAdminHandler(mobileRules *services.MobileRuleService, userService *services.UserService) *AdminHandler {
	return &AdminHandler{
		mobileRules: mobileRules,
		userService: userService,
	}
}

// ListMobileRules returns the configured mobile validation rules
func (h *AdminHandler) ListMobileRules(c *gin.Context) {
	rules, err := h.mobileRules.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load mobile validation rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

type mobileRuleRequest struct {
	CountryCode      string `json:"country_code" binding:"required"`
	OperatorPattern  string `json:"operator_pattern" binding:"required"`
	SubscriberLength int    `json:"subscriber_length" binding:"required"`
	ExampleFormat    string `json:"example_format" binding:"required"`
}

// CreateMobileRule adds a new country rule
func (h *AdminHandler) CreateMobileRule(c *gin.Context) {
	var req mobileRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := models.MobileValidationRule{
		CountryCode:      req.CountryCode,
		OperatorPattern:  req.OperatorPattern,
		SubscriberLength: req.SubscriberLength,
		ExampleFormat:    req.ExampleFormat,
	}
	if err := h.mobileRules.Create(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// UpdateMobileRule edits an existing country rule
func (h *AdminHandler) UpdateMobileRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	var req mobileRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := models.MobileValidationRule{
		CountryCode:      req.CountryCode,
		OperatorPattern:  req.OperatorPattern,
		SubscriberLength: req.SubscriberLength,
		ExampleFormat:    req.ExampleFormat,
	}
	if err := h.mobileRules.Update(id, &rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mobile validation rule updated"})
}

// DeleteMobileRule removes a country rule
func (h *AdminHandler) DeleteMobileRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	if err := h.mobileRules.Delete(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mobile validation rule deleted"})
}

// ListUsers returns all registered users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

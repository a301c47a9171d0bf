package handlers

import (
	"net/http"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/services"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// RegisterEmployee handles employee registration. Admin only.
func (h *AuthHandler) RegisterEmployee(c *gin.Context) {
	var req models.RegistrationPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	employee, err := h.authService.RegisterEmployee(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to register employee.")
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// Login handles employee login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		utils.LogWarn("Login failed", map[string]interface{}{"username": req.Username, "ip": c.ClientIP(), "reason": err.Error()})
		respondServiceError(c, err, "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCurrentUser retrieves the profile of the currently authenticated employee.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}

	employee, err := h.authService.GetProfile(c.Request.Context(), employeeID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve user profile.")
		return
	}
	c.JSON(http.StatusOK, employee)
}

// Logout acknowledges a logout. Tokens are stateless, so the client discards its own.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully. Please discard your token."})
}

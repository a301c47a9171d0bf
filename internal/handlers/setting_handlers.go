package handlers

import (
	"net/http"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SettingHandler exposes the application_settings table to admins.
type SettingHandler struct {
	settingService services.SettingService
}

func NewSettingHandler(ss services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: ss}
}

// GetApplicationSettings retrieves all application settings
func (h *SettingHandler) GetApplicationSettings(c *gin.Context) {
	settings, err := h.settingService.GetSettings(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to fetch application settings.")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetApplicationSettingByKey retrieves a specific application setting by its key
func (h *SettingHandler) GetApplicationSettingByKey(c *gin.Context) {
	setting, err := h.settingService.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch application setting.")
		return
	}
	c.JSON(http.StatusOK, setting)
}

// PutApplicationSetting creates a setting or updates an existing one by key
func (h *SettingHandler) PutApplicationSetting(c *gin.Context) {
	var payload models.UpsertSettingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	setting, err := h.settingService.UpsertSetting(c.Request.Context(), c.Param("key"), payload)
	if err != nil {
		respondServiceError(c, err, "Failed to save application setting.")
		return
	}
	c.JSON(http.StatusOK, setting)
}

// DeleteApplicationSettingByKey deletes an application setting by its key
func (h *SettingHandler) DeleteApplicationSettingByKey(c *gin.Context) {
	key := c.Param("key")
	if err := h.settingService.DeleteSetting(c.Request.Context(), key); err != nil {
		respondServiceError(c, err, "Failed to delete application setting.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application setting '" + key + "' deleted successfully"})
}

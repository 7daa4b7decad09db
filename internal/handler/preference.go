package handler

import (
	"errors"
	"net/http"

	"dining/internal/middleware"
	"dining/internal/model"
	"dining/internal/repository"
	"dining/internal/service"

	"github.com/gin-gonic/gin"
)

// PreferenceHandler handles preference-related HTTP requests
type PreferenceHandler struct {
	preferences *service.PreferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferences *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

// Options handles GET /api/v1/preferences/options
func (h *PreferenceHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.preferences.Options())
}

// Get handles GET /api/v1/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	prefs, err := h.preferences.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get preferences: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// Save handles PUT /api/v1/preferences
func (h *PreferenceHandler) Save(c *gin.Context) {
	var prefs model.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	// The token decides whose record is written
	prefs.UserID = middleware.GetUserID(c)

	if err := h.preferences.Save(c.Request.Context(), &prefs); err != nil {
		writeSaveError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// GetSimple handles GET /api/v1/preferences/simple
func (h *PreferenceHandler) GetSimple(c *gin.Context) {
	prefs, err := h.preferences.GetSimple(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get preferences: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// SaveSimple handles PUT /api/v1/preferences/simple
func (h *PreferenceHandler) SaveSimple(c *gin.Context) {
	var prefs model.SimplePreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	prefs.UserID = middleware.GetUserID(c)

	if err := h.preferences.SaveSimple(c.Request.Context(), &prefs); err != nil {
		writeSaveError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

func writeSaveError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrInvalidPreferences) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences: " + err.Error()})
}

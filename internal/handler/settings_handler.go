package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/placevisit-backend-go/internal/models"
	"github.com/jengzang/placevisit-backend-go/pkg/response"
)

// SettingsManager reads and replaces the detection settings
type SettingsManager interface {
	GetSettings(ctx context.Context) (models.DetectionSettings, error)
	Update(ctx context.Context, s models.DetectionSettings) error
}

// SettingsHandler handles the detection settings endpoints
type SettingsHandler struct {
	settings SettingsManager
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings SettingsManager) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settings.GetSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, s)
}

// Put handles PUT /api/v1/settings. Fields missing from the body keep
// their current value.
func (h *SettingsHandler) Put(c *gin.Context) {
	s, err := h.settings.GetSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&s); err != nil {
		response.BadRequest(c, "Invalid settings body", err)
		return
	}
	if err := s.Validate(); err != nil {
		response.BadRequest(c, err.Error(), err)
		return
	}
	if err := h.settings.Update(c.Request.Context(), s); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, s)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/service"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
	"github.com/imrann-dev/school-erp-api/pkg/response"
)

// SettingsHandler exposes per-role portal settings endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get settings for a portal role
// @Tags Settings
// @Produce json
// @Param role path string true "Portal role (student, teacher, parent, admin)"
// @Success 200 {object} response.Envelope
// @Router /settings/{role} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	doc, err := h.settings.Get(c.Request.Context(), c.Param("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Update godoc
// @Summary Patch settings for a portal role
// @Tags Settings
// @Accept json
// @Produce json
// @Param role path string true "Portal role"
// @Param payload body dto.UpdateDocumentRequest true "Settings patch"
// @Success 200 {object} response.Envelope
// @Router /settings/{role} [patch]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	doc, err := h.settings.Update(c.Request.Context(), c.Param("role"), req.Patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// UpdateSection godoc
// @Summary Patch one settings section for a portal role
// @Tags Settings
// @Accept json
// @Produce json
// @Param role path string true "Portal role"
// @Param section path string true "Section name (profile, notifications, ...)"
// @Param payload body dto.UpdateSectionRequest true "Section patch"
// @Success 200 {object} response.Envelope
// @Router /settings/{role}/{section} [patch]
func (h *SettingsHandler) UpdateSection(c *gin.Context) {
	var req dto.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	doc, err := h.settings.UpdateSection(c.Request.Context(), c.Param("role"), c.Param("section"), req.Patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Reset godoc
// @Summary Reset a portal role's settings to defaults
// @Tags Settings
// @Produce json
// @Param role path string true "Portal role"
// @Success 200 {object} response.Envelope
// @Router /settings/{role}/reset [post]
func (h *SettingsHandler) Reset(c *gin.Context) {
	doc, err := h.settings.Reset(c.Request.Context(), c.Param("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// ChangePassword godoc
// @Summary Record a password change for a portal role
// @Tags Settings
// @Produce json
// @Param role path string true "Portal role"
// @Success 200 {object} response.Envelope
// @Router /settings/{role}/password [post]
func (h *SettingsHandler) ChangePassword(c *gin.Context) {
	doc, err := h.settings.ChangePassword(c.Request.Context(), c.Param("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

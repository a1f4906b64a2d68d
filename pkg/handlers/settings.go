package handlers

import (
	"net/http"
	"time"

	"company-workspace-backend/pkg/middleware"
	"company-workspace-backend/pkg/models"
	"company-workspace-backend/pkg/services"
	"company-workspace-backend/pkg/utils"
)

// UpdateSettingsRequest is the body of PUT /api/settings
type UpdateSettingsRequest struct {
	CompanyName *string `json:"company_name" validate:"omitempty,min=1,max=200"`
	Timezone    *string `json:"timezone" validate:"omitempty,timezone"`
}

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetUserSettings(r.Context(), middleware.GetIdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to load settings")
		return
	}
	utils.WriteSuccessResponse(w, settings)
}

// PUT /api/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		writeInvalidInput(w, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		writeInvalidInput(w, err.Error())
		return
	}

	patch := models.SettingsPatch{CompanyName: req.CompanyName, Timezone: req.Timezone}
	if err := h.settingsService.UpdateUserSettings(r.Context(), middleware.GetIdentityFromContext(r.Context()), patch); err != nil {
		writeServiceError(w, err, "Failed to save settings")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"updated":    true,
		"updated_at": time.Now().UTC(),
	})
}

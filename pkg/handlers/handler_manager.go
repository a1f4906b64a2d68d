package handlers

import (
	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/services"
)

type HandlerManager struct {
	AuthHandler     *AuthHandler
	CompanyHandler  *CompanyHandler
	SettingsHandler *SettingsHandler
	CategoryHandler *CategoryHandler
}

func NewHandlerManager(cfg *config.Config, db database.DatabaseInterface, sm *services.ServiceManager) *HandlerManager {
	return &HandlerManager{
		AuthHandler:     NewAuthHandler(cfg, db),
		CompanyHandler:  NewCompanyHandler(sm.CompanyService),
		SettingsHandler: NewSettingsHandler(sm.SettingsService),
		CategoryHandler: NewCategoryHandler(sm.CategoryService),
	}
}

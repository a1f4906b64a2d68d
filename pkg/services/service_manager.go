package services

import (
	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/database"
)

type ServiceManager struct {
	CompanyService  CompanyService
	SettingsService SettingsService
	CategoryService CategoryService
}

func NewServiceManager(cfg *config.Config, db database.DatabaseInterface) *ServiceManager {
	return &ServiceManager{
		CompanyService:  NewCompanyService(db),
		SettingsService: NewSettingsService(cfg, db),
		CategoryService: NewCategoryService(db),
	}
}

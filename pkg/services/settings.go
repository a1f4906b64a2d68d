package services

import (
	"context"
	"strings"
	"time"

	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/models"
)

const fallbackCompanyName = "My Company"

type SettingsService interface {
	// GetUserSettings always yields settings for an authenticated caller.
	// Store failures fall back to defaults and are only logged.
	GetUserSettings(ctx context.Context, caller *models.Identity) (*models.UserSettings, error)
	UpdateUserSettings(ctx context.Context, caller *models.Identity, patch models.SettingsPatch) error
}

type settingsService struct {
	db                 database.DatabaseInterface
	defaultCompanyName string
	defaultTimezone    string
}

func NewSettingsService(cfg *config.Config, db database.DatabaseInterface) SettingsService {
	s := &settingsService{db: db, defaultCompanyName: fallbackCompanyName}
	if cfg != nil {
		if name := strings.TrimSpace(cfg.DefaultCompanyName); name != "" {
			s.defaultCompanyName = name
		}
		s.defaultTimezone = strings.TrimSpace(cfg.DefaultTimezone)
	}
	return s
}

func (s *settingsService) GetUserSettings(ctx context.Context, caller *models.Identity) (*models.UserSettings, error) {
	if caller == nil || caller.ID == "" {
		return nil, ErrUnauthenticated
	}
	log := logger.Settings().WithField("user_id", caller.ID)
	defaults := s.defaults(caller)

	settings, err := s.db.GetUserSettings(ctx, caller.ID)
	if err == nil && settings != nil {
		return settings, nil
	}
	if err != nil && !database.IsNoRows(err) {
		log.WithError(err).Error("failed to fetch user settings, using defaults")
		return defaults, nil
	}

	created, err := s.db.UpsertUserSettings(ctx, defaults)
	if err != nil || created == nil {
		log.WithError(err).Error("failed to create default user settings")
		return defaults, nil
	}
	log.WithField("company", created.CompanyName).Info("created default user settings")
	return created, nil
}

// UpdateUserSettings updates the caller's row if it exists and inserts one
// otherwise. Fields missing from the patch are filled from the defaults on
// insert. Store errors are returned unchanged.
func (s *settingsService) UpdateUserSettings(ctx context.Context, caller *models.Identity, patch models.SettingsPatch) error {
	if caller == nil || caller.ID == "" {
		return ErrUnauthenticated
	}
	patch, ok := normalizePatch(patch)
	if !ok {
		return ErrInvalidInput
	}
	log := logger.Settings().WithField("user_id", caller.ID)

	existing, err := s.db.GetUserSettings(ctx, caller.ID)
	if err != nil && !database.IsNoRows(err) {
		log.WithError(err).Error("failed to check existing user settings")
		return err
	}

	if err == nil && existing != nil {
		if err := s.db.UpdateUserSettings(ctx, caller.ID, patch); err != nil {
			log.WithError(err).Error("failed to update user settings")
			return err
		}
		return nil
	}

	row := s.defaults(caller)
	if patch.CompanyName != nil {
		row.CompanyName = *patch.CompanyName
	}
	if patch.Timezone != nil {
		row.Timezone = *patch.Timezone
	}
	if err := s.db.InsertUserSettings(ctx, row); err != nil {
		log.WithError(err).Error("failed to insert user settings")
		return err
	}
	return nil
}

// normalizePatch trims the supplied fields. It reports false when the patch
// is empty or sets a field to blank.
func normalizePatch(patch models.SettingsPatch) (models.SettingsPatch, bool) {
	if patch.Empty() {
		return patch, false
	}
	if patch.CompanyName != nil {
		name := strings.TrimSpace(*patch.CompanyName)
		if name == "" {
			return patch, false
		}
		patch.CompanyName = &name
	}
	if patch.Timezone != nil {
		tz := strings.TrimSpace(*patch.Timezone)
		if tz == "" {
			return patch, false
		}
		patch.Timezone = &tz
	}
	return patch, true
}

func (s *settingsService) defaults(caller *models.Identity) *models.UserSettings {
	company := caller.MetadataString("company_name")
	if company == "" {
		company = s.defaultCompanyName
	}
	tz := caller.MetadataString("timezone")
	if tz == "" {
		tz = s.defaultTimezone
	}
	if tz == "" {
		tz = runtimeTimezone()
	}
	return &models.UserSettings{UserID: caller.ID, CompanyName: company, Timezone: tz}
}

// runtimeTimezone names the process time zone, or UTC when it has no IANA name.
func runtimeTimezone() string {
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}

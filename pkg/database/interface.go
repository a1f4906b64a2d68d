package database

import (
	"context"
	"fmt"

	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/models"
)

// DatabaseInterface is the relational store behind the workspace.
//
// Single-row reads (GetUserSettings) return a CodeNoRows StoreError when the
// row is missing. Maybe-single reads (GetMembership, FindMembershipByEmail)
// return (nil, nil) instead.
type DatabaseInterface interface {
	// User settings
	GetUserSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	UpsertUserSettings(ctx context.Context, s *models.UserSettings) (*models.UserSettings, error)
	InsertUserSettings(ctx context.Context, s *models.UserSettings) error
	UpdateUserSettings(ctx context.Context, userID string, patch models.SettingsPatch) error

	// Company memberships
	GetMembership(ctx context.Context, userID, companyName string) (*models.CompanyMembership, error)
	FindMembershipByEmail(ctx context.Context, email, companyName string) (*models.CompanyMembership, error)
	CreateMembership(ctx context.Context, m *models.CompanyMembership) error
	ListMembershipsByCompany(ctx context.Context, companyName string) ([]models.MembershipSummary, error)
	UpdateMembership(ctx context.Context, userID, companyName string, patch models.MembershipPatch) error

	// Tasks
	CreateTask(ctx context.Context, t *models.Task) error
	UpdateTaskCollaborators(ctx context.Context, taskID string, collaborators []string) error

	// Categories
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, id, name, color string) error
	DeleteCategory(ctx context.Context, id string) error

	HealthCheck(ctx context.Context) error
	Close() error
}

const (
	tableUserSettings = "user_settings"
	tableMemberships  = "company_users"
	tableTasks        = "tasks"
	tableCategories   = "categories"
)

// DatabaseConfig selects and configures the store backend
type DatabaseConfig struct {
	PostgresDSN string
	SupabaseURL string
	SupabaseKey string
	SQLitePath  string
	Debug       bool
}

// Kind names the backend the config resolves to
func (c DatabaseConfig) Kind() string {
	switch {
	case c.PostgresDSN != "":
		return "postgres"
	case c.SupabaseURL != "" && c.SupabaseKey != "":
		return "supabase"
	case c.SQLitePath != "":
		return "sqlite"
	}
	return ""
}

// NewDatabase opens the backend chosen by config: PostgreSQL > Supabase > SQLite.
func NewDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	log := logger.DB().WithField("backend", config.Kind())

	switch config.Kind() {
	case "postgres":
		log.Info("using PostgreSQL database")
		db, err := OpenPostgres(config.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "supabase":
		log.Info("using Supabase REST API")
		return NewSupabaseDatabase(config.SupabaseURL, config.SupabaseKey), nil
	case "sqlite":
		log.WithField("path", config.SQLitePath).Info("using SQLite database")
		db, err := OpenSQLite(config.SQLitePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("no valid database configuration found: set POSTGRES_DSN, SUPABASE_URL+SUPABASE_SERVICE_KEY or SQLITE_PATH")
}

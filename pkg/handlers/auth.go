package handlers

import (
	"net/http"
	"time"

	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/middleware"
	"company-workspace-backend/pkg/utils"
)

type AuthHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

func NewAuthHandler(cfg *config.Config, db database.DatabaseInterface) *AuthHandler {
	return &AuthHandler{config: cfg, db: db}
}

// HealthCheck reports the service version and store reachability, and
// whether the request carried a valid token.
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbStatus := "healthy"
	if err := h.db.HealthCheck(r.Context()); err != nil {
		logger.HTTP().WithError(err).Warn("database health check failed")
		dbStatus = "unhealthy: " + err.Error()
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"authenticated": middleware.GetIdentityFromContext(r.Context()) != nil,
		"service":       config.ServiceName,
		"version":       config.Version,
		"environment":   h.config.Environment,
		"database":      h.databaseKind(),
		"db_status":     dbStatus,
		"timestamp":     time.Now().Unix(),
		"status":        "healthy",
	})
}

// Me returns the identity carried by the access token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	if identity == nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	utils.WriteSuccessResponse(w, identity)
}

func (h *AuthHandler) databaseKind() string {
	kind := database.DatabaseConfig{
		PostgresDSN: h.config.PostgresDSN,
		SupabaseURL: h.config.SupabaseURL,
		SupabaseKey: h.config.SupabaseKey,
		SQLitePath:  h.config.SQLitePath,
	}.Kind()
	if kind == "" {
		return "unknown"
	}
	return kind
}

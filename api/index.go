package handler

import (
	"net/http"

	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/server"
	"company-workspace-backend/pkg/utils"
)

// Handler is the Vercel function entry point. Every API route is served by
// one chi router built per invocation on top of the cached store.
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()
	logger.Configure(cfg.LogLevel, cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		logger.HTTP().WithError(err).Error("invalid configuration")
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	// the pool owns the connection across warm invocations
	db, err := database.GetDatabase(r.Context(), database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	})
	if err != nil {
		logger.DB().WithError(err).Error("failed to open database")
		utils.WriteInternalServerErrorResponse(w, "Database unavailable")
		return
	}

	server.NewRouter(cfg, db).ServeHTTP(w, r)
}

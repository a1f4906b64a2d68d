package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/handlers"
	customMiddleware "company-workspace-backend/pkg/middleware"
	"company-workspace-backend/pkg/services"
	"company-workspace-backend/pkg/utils"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// NewRouter builds the chi router serving the whole API. It is shared by the
// serverless entry point and the serve command.
func NewRouter(cfg *config.Config, db database.DatabaseInterface) http.Handler {
	router := chi.NewRouter()

	setupMiddleware(router, cfg)
	setupRoutes(router, cfg, db)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.RequestLogger())
	router.Use(customMiddleware.Recovery(cfg))

	router.Use(customMiddleware.CORS(cfg))

	// serverless functions are killed at 30s
	router.Use(middleware.Timeout(25 * time.Second))
	router.Use(middleware.Compress(5))

	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

func setupRoutes(router *chi.Mux, cfg *config.Config, db database.DatabaseInterface) {
	hm := handlers.NewHandlerManager(cfg, db, services.NewServiceManager(cfg, db))
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	router.With(customMiddleware.OptionalAuthMiddleware(jwtService)).Get("/", hm.AuthHandler.HealthCheck)

	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.ContentTypeJSON)
		r.Use(customMiddleware.MaxBodySize(maxBodyBytes))
		r.Use(customMiddleware.AuthMiddleware(jwtService))

		r.Get("/me", hm.AuthHandler.Me)

		r.Route("/company/users", func(r chi.Router) {
			r.Get("/", hm.CompanyHandler.ListUsers)
			r.Post("/", hm.CompanyHandler.AddUser)
			r.Patch("/{userID}", hm.CompanyHandler.UpdateUserRole)
		})

		r.Put("/tasks/{taskID}/collaborators", hm.CompanyHandler.UpdateTaskCollaborators)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", hm.SettingsHandler.GetSettings)
			r.Put("/", hm.SettingsHandler.UpdateSettings)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", hm.CategoryHandler.ListCategories)
			r.Get("/palette", hm.CategoryHandler.Palette)
			r.Put("/{id}", hm.CategoryHandler.UpdateCategory)
			r.Delete("/{id}", hm.CategoryHandler.DeleteCategory)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, "Endpoint not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", "")
	})
}

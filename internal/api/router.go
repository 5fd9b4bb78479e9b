package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/schoolgate/internal/api/handler"
	"github.com/mcoot/schoolgate/internal/api/middleware"
	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/auth"
	"github.com/mcoot/schoolgate/internal/services/gate"
	"github.com/mcoot/schoolgate/internal/services/pass"
	"github.com/mcoot/schoolgate/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Coordinator *auth.Coordinator
	Gate        *gate.Manager
	Passes      *pass.Issuer
	// Pinger is optional; nil reports storage as always healthy
	Pinger storage.Pinger
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	windowHandler := handler.NewWindowHandler(cfg.Gate, cfg.Passes, cfg.Logger)
	accountHandler := handler.NewAccountHandler(cfg.Coordinator)
	healthHandler := handler.NewHealthHandler(cfg.Pinger, cfg.Gate, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Passes)
	adminOnly := middleware.RequireRole(cfg.Coordinator, model.RoleAdmin)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Login window routes (no pass required)
	api.HandleFunc("/windows", windowHandler.Open).Methods(http.MethodPost)
	api.HandleFunc("/windows/{token}", windowHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/windows/{token}", windowHandler.Close).Methods(http.MethodDelete)
	api.HandleFunc("/windows/{token}/tiles/{pos:[0-9]+}", windowHandler.Tile).Methods(http.MethodGet)
	api.HandleFunc("/windows/{token}/select", windowHandler.Select).Methods(http.MethodPost)
	api.HandleFunc("/windows/{token}/swap", windowHandler.Swap).Methods(http.MethodPost)
	api.HandleFunc("/windows/{token}/reshuffle", windowHandler.Reshuffle).Methods(http.MethodPost)
	api.HandleFunc("/windows/{token}/login", windowHandler.Login).Methods(http.MethodPost)

	// Registration is open to teachers and students; admins are created or
	// promoted through the admin routes
	api.HandleFunc("/accounts", accountHandler.Register).Methods(http.MethodPost)

	// Pass holder routes
	me := api.PathPrefix("/accounts/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("", accountHandler.Me).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.Use(adminOnly)
	admin.HandleFunc("/accounts", accountHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/accounts", accountHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/accounts/{id}", accountHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/accounts/{id}", accountHandler.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/accounts/{id}", accountHandler.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/accounts/{id}/block", accountHandler.Block).Methods(http.MethodPost)
	admin.HandleFunc("/accounts/{id}/unblock", accountHandler.Unblock).Methods(http.MethodPost)
	admin.HandleFunc("/accounts/{id}/reset-attempts", accountHandler.ResetAttempts).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	return r
}

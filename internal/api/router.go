package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Void-Roleplay/backend/internal/api/handler"
	apimiddleware "github.com/Void-Roleplay/backend/internal/api/middleware"
	"github.com/Void-Roleplay/backend/internal/middleware"
	"github.com/Void-Roleplay/backend/internal/services/linking"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	LinkingService *linking.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	integrationHandler := handler.NewIntegrationHandler(cfg.LinkingService)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Integration routes, called by the in-game plugin and the bot gateways
	integration := api.PathPrefix("/integration/{platform}").Subrouter()
	integration.HandleFunc("/link", integrationHandler.Link).Methods(http.MethodPost)
	integration.HandleFunc("/signal", integrationHandler.Signal).Methods(http.MethodPost)
	integration.HandleFunc("/reload", integrationHandler.Reload).Methods(http.MethodPost)
	integration.HandleFunc("/unlink", integrationHandler.Unlink).Methods(http.MethodPost)
	integration.HandleFunc("/cancel", integrationHandler.Cancel).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

package app

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"hubspot-connector/internal/handlers"
	"hubspot-connector/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application.
// rateLimit, when non-nil, applies to the integration routes only.
func SetupRoutes(router *mux.Router, h *handlers.Handlers, rateLimit mux.MiddlewareFunc) {
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	integrations := router.PathPrefix("/integrations/hubspot").Subrouter()
	if rateLimit != nil {
		integrations.Use(rateLimit)
	}
	integrations.HandleFunc("/authorize", h.AuthorizeHubSpot).Methods(http.MethodPost)
	integrations.HandleFunc("/oauth2callback", h.HubSpotCallback).Methods(http.MethodGet)
	integrations.HandleFunc("/credentials", h.HubSpotCredentials).Methods(http.MethodPost)
	integrations.HandleFunc("/load", h.LoadHubSpotItems).Methods(http.MethodPost)
}

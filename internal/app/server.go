package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"hubspot-connector/internal/handlers"
	"hubspot-connector/internal/middleware"
	"hubspot-connector/internal/server"
)

// Handler builds the full HTTP handler. CORS wraps the router so preflight
// requests are answered before route matching.
func (app *App) Handler() http.Handler {
	h := handlers.New(app.HubSpot, app.RedisClient)

	var rateLimit mux.MiddlewareFunc
	if app.RateLimiter != nil && app.RateLimiter.Enabled() {
		rateLimit = middleware.RateLimitMiddleware(app.RateLimiter, middleware.IPKey, app.rateLimitConfig())
	}

	router := mux.NewRouter()
	SetupRoutes(router, h, rateLimit)

	return middleware.CORSMiddleware(app.Config.CORSAllowedOrigins)(router)
}

// RunServer creates the HTTP server with all handlers configured
func (app *App) RunServer() (*server.Server, http.Handler) {
	handler := app.Handler()
	return server.New(handler, app.Config.Port), handler
}

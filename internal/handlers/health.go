package handlers

import (
	"context"
	"net/http"
	"time"

	"hubspot-connector/internal/circuitbreaker"
)

type breakerReporter interface {
	BreakerStats() []circuitbreaker.Stats
}

// HealthCheck returns the health status of the application
// @Summary Health check
// @Description Returns the health status of the application and its credential store
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status"
// @Failure 503 {object} map[string]interface{} "Credential store unreachable"
// @Router /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}
	code := http.StatusOK

	if h.store == nil {
		status["store_status"] = "not_configured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.store.Health(ctx); err != nil {
			status["status"] = "unhealthy"
			status["store_status"] = "unhealthy"
			status["store_error"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["store_status"] = "healthy"
		}
	}

	if reporter, ok := h.hubspot.(breakerReporter); ok {
		status["circuit_breakers"] = reporter.BreakerStats()
	}

	h.sendJSONResponse(w, code, status)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"hubspot-connector/internal/common/errors"
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/hubspot"
	"hubspot-connector/internal/models"
)

// Connector is the HubSpot flow the handlers expose
type Connector interface {
	Authorize(userID, orgID string) string
	HandleCallback(ctx context.Context, params hubspot.CallbackParams) (*hubspot.TokenRecord, error)
	GetCredentials(ctx context.Context, userID, orgID string) (*hubspot.TokenRecord, error)
	FetchItemsJSON(ctx context.Context, raw string) ([]models.IntegrationItem, error)
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Handlers struct {
	hubspot Connector
	store   HealthChecker
	logger  logging.Logger
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

const codeInternal = "internal_error"

// New creates the HTTP handlers. store may be nil when nothing backs a health check.
func New(connector Connector, store HealthChecker) *Handlers {
	return &Handlers{
		hubspot: connector,
		store:   store,
		logger:  logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "handlers"}),
	}
}

func (h *Handlers) sendJSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", err)
	}
}

// sendJSONError writes err using its AppError kind and status. Anything
// that is not an AppError is reported as an opaque internal error.
func (h *Handlers) sendJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	logger := h.logger.WithContext(r.Context()).WithFields(
		logging.Field{Key: "path", Value: r.URL.Path},
		logging.Field{Key: "status", Value: status},
	)

	body := ErrorResponse{Error: codeInternal, Message: "Internal server error"}
	if appErr, ok := errors.As(err); ok {
		body = ErrorResponse{Error: appErr.Code, Message: appErr.Message, Details: appErr.Details}
		if body.Error == "" {
			body.Error = string(appErr.Type)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err)
	} else {
		logger.Warn("Request rejected", logging.Field{Key: "error", Value: err.Error()})
	}

	h.sendJSONResponse(w, status, body)
}

package handlers

import (
	"net/http"

	"hubspot-connector/internal/common/errors"
	"hubspot-connector/internal/common/validation"
	"hubspot-connector/internal/hubspot"
)

// closeWindowPage ends the consent popup once tokens are stored
const closeWindowPage = `<html>
    <script>
        window.close();
    </script>
</html>`

// userRequest identifies whose HubSpot connection an operation is about
type userRequest struct {
	UserID string `form:"user_id" validate:"required,state_part,max=256"`
	OrgID  string `form:"org_id" validate:"required,state_part,max=256"`
}

type loadRequest struct {
	Credentials string `form:"credentials" validate:"required"`
}

func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return errors.ValidationError("request body is not a valid form").WithCode(validation.CodeInvalidRequest)
	}
	return nil
}

func decodeUserRequest(r *http.Request) (userRequest, error) {
	if err := parseForm(r); err != nil {
		return userRequest{}, err
	}
	req := userRequest{
		UserID: r.PostFormValue("user_id"),
		OrgID:  r.PostFormValue("org_id"),
	}
	return req, validation.ValidateStruct(req)
}

func decodeLoadRequest(r *http.Request) (loadRequest, error) {
	if err := parseForm(r); err != nil {
		return loadRequest{}, err
	}
	req := loadRequest{Credentials: r.PostFormValue("credentials")}
	return req, validation.ValidateStruct(req)
}

// AuthorizeHubSpot returns the consent URL for a user and organization
// @Summary Start HubSpot authorization
// @Description Builds the HubSpot consent URL. The state is "{user_id}:{org_id}".
// @Tags hubspot
// @Accept x-www-form-urlencoded
// @Produce json
// @Param user_id formData string true "User ID"
// @Param org_id formData string true "Organization ID"
// @Success 200 {string} string "Authorization URL"
// @Failure 400 {object} ErrorResponse "Missing or malformed form field"
// @Router /integrations/hubspot/authorize [post]
func (h *Handlers) AuthorizeHubSpot(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		h.sendJSONError(w, r, err)
		return
	}

	h.sendJSONResponse(w, http.StatusOK, h.hubspot.Authorize(req.UserID, req.OrgID))
}

// HubSpotCallback completes the authorization HubSpot redirected back with
// @Summary HubSpot OAuth callback
// @Description Exchanges the authorization code and stores the tokens. On success the page closes its own window.
// @Tags hubspot
// @Produce html
// @Param code query string false "Authorization code"
// @Param state query string false "user_id:org_id"
// @Param error query string false "Provider error"
// @Success 200 {string} string "HTML page that closes the window"
// @Failure 400 {object} ErrorResponse "Missing code or malformed state"
// @Failure 401 {object} ErrorResponse "Authorization denied"
// @Failure 502 {object} ErrorResponse "Token exchange failed"
// @Router /integrations/hubspot/oauth2callback [get]
func (h *Handlers) HubSpotCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := hubspot.CallbackParams{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	if _, err := h.hubspot.HandleCallback(r.Context(), params); err != nil {
		h.sendJSONError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(closeWindowPage))
}

// HubSpotCredentials returns the stored token record, refreshing it when expired
// @Summary Get HubSpot credentials
// @Description Returns the stored token record. An expired access token is refreshed first.
// @Tags hubspot
// @Accept x-www-form-urlencoded
// @Produce json
// @Param user_id formData string true "User ID"
// @Param org_id formData string true "Organization ID"
// @Success 200 {object} hubspot.TokenRecord
// @Failure 400 {object} ErrorResponse "Missing form field or unreadable record"
// @Failure 401 {object} ErrorResponse "Expired without refresh token"
// @Failure 404 {object} ErrorResponse "No credentials stored"
// @Failure 502 {object} ErrorResponse "Refresh failed"
// @Router /integrations/hubspot/credentials [post]
func (h *Handlers) HubSpotCredentials(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		h.sendJSONError(w, r, err)
		return
	}

	record, err := h.hubspot.GetCredentials(r.Context(), req.UserID, req.OrgID)
	if err != nil {
		h.sendJSONError(w, r, err)
		return
	}

	h.sendJSONResponse(w, http.StatusOK, record)
}

// LoadHubSpotItems lists contacts for serialized credentials
// @Summary Load HubSpot contacts
// @Description Fetches contacts with the given credentials and normalizes them to integration items.
// @Tags hubspot
// @Accept x-www-form-urlencoded
// @Produce json
// @Param credentials formData string true "Token record as JSON"
// @Success 200 {array} models.IntegrationItem
// @Failure 400 {object} ErrorResponse "Invalid credentials"
// @Failure 502 {object} ErrorResponse "HubSpot API failed"
// @Router /integrations/hubspot/load [post]
func (h *Handlers) LoadHubSpotItems(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoadRequest(r)
	if err != nil {
		h.sendJSONError(w, r, err)
		return
	}

	items, err := h.hubspot.FetchItemsJSON(r.Context(), req.Credentials)
	if err != nil {
		h.sendJSONError(w, r, err)
		return
	}

	h.sendJSONResponse(w, http.StatusOK, items)
}

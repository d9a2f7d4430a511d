package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"hubspot-connector/internal/common/errors"
	commonhttp "hubspot-connector/internal/common/http"
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/models"
)

const (
	contactsPath = "/crm/v3/objects/contacts"

	contactItemType   = "Contact"
	contactsContainer = "HubSpot Contacts"
)

// Contact is one entry of the contacts list. Property values may be null.
type Contact struct {
	ID         string             `json:"id"`
	Properties map[string]*string `json:"properties"`
}

func (c Contact) property(name string) string {
	if v := c.Properties[name]; v != nil {
		return *v
	}
	return ""
}

// ContactsResponse is the body of GET /crm/v3/objects/contacts
type ContactsResponse struct {
	Results []Contact `json:"results"`
}

// Normalize maps contacts to integration items in order.
// The result is never nil.
func Normalize(resp *ContactsResponse) []models.IntegrationItem {
	if resp == nil {
		return []models.IntegrationItem{}
	}

	items := make([]models.IntegrationItem, 0, len(resp.Results))
	for _, contact := range resp.Results {
		name := strings.TrimSpace(contact.property("firstname") + " " + contact.property("lastname"))
		items = append(items, models.IntegrationItem{
			ID:               contact.ID,
			Name:             name,
			Type:             contactItemType,
			CreationTime:     contact.property("createdate"),
			ParentPathOrName: contactsContainer,
			Visibility:       true,
		})
	}
	return items
}

// FetchItemsJSON decodes serialized credentials and fetches contacts with them
func (m *Manager) FetchItemsJSON(ctx context.Context, raw string) ([]models.IntegrationItem, error) {
	record, err := ParseCredentials(raw)
	if err != nil {
		return nil, err
	}
	return m.FetchItems(ctx, record)
}

// FetchItems lists the contacts visible to the record's access token.
// Expired tokens are not refreshed here.
func (m *Manager) FetchItems(ctx context.Context, record *TokenRecord) ([]models.IntegrationItem, error) {
	if record == nil || record.AccessToken == "" {
		return nil, errMissingAccessToken()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.APIBaseURL+contactsPath, nil)
	if err != nil {
		return nil, errors.InternalError("failed to create contacts request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.apiClient(record.AccessToken).Do(ctx, req)
	if err != nil {
		return nil, errors.ConnectionError("contacts request failed", err).WithCode(CodeProviderAPIFailed)
	}
	if !resp.OK() {
		m.logger.WithContext(ctx).Warn("Contacts request rejected",
			logging.Field{Key: "status", Value: resp.StatusCode},
			logging.Field{Key: "duration_ms", Value: resp.Duration.Milliseconds()},
		)
		return nil, errors.UpstreamError("contacts request failed", resp.StatusCode, string(resp.Body)).
			WithCode(CodeProviderAPIFailed)
	}

	var contacts ContactsResponse
	if err := json.Unmarshal(resp.Body, &contacts); err != nil {
		appErr := errors.UpstreamError("contacts response is not valid JSON", resp.StatusCode, string(resp.Body)).
			WithCode(CodeProviderAPIFailed)
		appErr.Cause = err
		return nil, appErr
	}

	items := Normalize(&contacts)
	m.logger.WithContext(ctx).Debug("Fetched HubSpot contacts",
		logging.Field{Key: "count", Value: len(items)},
		logging.Field{Key: "duration_ms", Value: resp.Duration.Milliseconds()},
	)
	return items, nil
}

// apiClient returns a client that sends accessToken as a bearer credential.
// The breaker is shared across tokens.
func (m *Manager) apiClient(accessToken string) *commonhttp.Client {
	transport := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: accessToken,
			TokenType:   "Bearer",
		}),
		Base: m.transport,
	}
	return commonhttp.NewClient(m.httpClient(transport), m.apiBreaker)
}

package hubspot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"hubspot-connector/internal/circuitbreaker"
	"hubspot-connector/internal/common/errors"
	commonhttp "hubspot-connector/internal/common/http"
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/config"
	"hubspot-connector/internal/credentials"
	"hubspot-connector/internal/locks"
)

// DefaultCredentialTTL is how long a token record stays in the store after
// it is written. It is independent of the access token's own lifetime.
const DefaultCredentialTTL = 3600 * time.Second

// refreshLockExpiry bounds how long one instance may hold a record's refresh lock
const refreshLockExpiry = 30 * time.Second

// Config holds the HubSpot application registration and endpoints.
type Config struct {
	// ClientID and ClientSecret identify the registered HubSpot app
	ClientID     string
	ClientSecret string
	// RedirectURL must match the callback registered with HubSpot
	RedirectURL string
	Scopes      []string

	AuthURL    string
	TokenURL   string
	APIBaseURL string

	// CredentialTTL is the store lifetime of a token record; zero means DefaultCredentialTTL
	CredentialTTL time.Duration
	// Timeout bounds every outbound call; zero keeps the HTTP client default
	Timeout time.Duration
}

// ConfigFromApp extracts the HubSpot settings from the process configuration
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		ClientID:      cfg.HubSpotClientID,
		ClientSecret:  cfg.HubSpotClientSecret,
		RedirectURL:   cfg.HubSpotRedirectURI,
		Scopes:        cfg.HubSpotScopes,
		AuthURL:       cfg.HubSpotAuthURL,
		TokenURL:      cfg.HubSpotTokenURL,
		APIBaseURL:    cfg.HubSpotAPIBaseURL,
		CredentialTTL: cfg.CredentialTTL,
		Timeout:       cfg.HTTPClientTimeout,
	}
}

func (c *Config) validate() error {
	switch {
	case c.ClientID == "":
		return errors.ConfigError("hubspot client id is required")
	case c.ClientSecret == "":
		return errors.ConfigError("hubspot client secret is required")
	case c.AuthURL == "":
		return errors.ConfigError("hubspot authorization url is required")
	case c.TokenURL == "":
		return errors.ConfigError("hubspot token url is required")
	case c.APIBaseURL == "":
		return errors.ConfigError("hubspot api base url is required")
	}
	return nil
}

// CallbackParams are the query parameters HubSpot redirects back with
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Locker provides mutual exclusion across instances sharing a store
type Locker interface {
	AcquireLock(ctx context.Context, key string, expiration time.Duration) (locks.Lock, error)
}

// Option customizes a Manager
type Option func(*Manager)

// WithTransport sets the round tripper used for every call to HubSpot
func WithTransport(transport http.RoundTripper) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithClock replaces the time source used to compute and check expiry
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithRefreshLock serializes refreshes of the same record across instances.
// Without it, concurrent instances may both refresh and the last write wins.
func WithRefreshLock(locker Locker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger sets the logger; the global logger is used otherwise
func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Manager runs the HubSpot authorization-code flow and reads contacts with
// the resulting tokens. Token records are kept in a credentials.Store under
// "{user_id}:{org_id}".
//
// A Manager is safe for concurrent use. Concurrent refreshes of the same
// record inside one process share a single token request.
type Manager struct {
	cfg       Config
	oauth     *oauth2.Config
	store     credentials.Store
	transport http.RoundTripper
	now       func() time.Time
	logger    logging.Logger
	locker    Locker

	tokenClient   *commonhttp.Client
	tokenBreaker  *circuitbreaker.GoBreakerAdapter
	apiBreaker    *circuitbreaker.GoBreakerAdapter
	refreshFlight singleflight.Group
}

// NewManager creates a Manager backed by store
func NewManager(cfg Config, store credentials.Store, opts ...Option) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.ConfigError("credential store is required")
	}
	if cfg.CredentialTTL <= 0 {
		cfg.CredentialTTL = DefaultCredentialTTL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	m := &Manager{
		cfg:   cfg,
		store: store,
		now:   time.Now,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logging.GetGlobalLogger()
	}
	m.logger = m.logger.WithFields(logging.Field{Key: "component", Value: "hubspot"})

	if m.transport == nil {
		m.transport = commonhttp.NewTransport(commonhttp.DefaultClientConfig())
	}

	m.tokenBreaker = circuitbreaker.NewGoBreaker("hubspot-token", circuitbreaker.OAuthConfig, m.logger)
	m.tokenClient = commonhttp.NewClient(m.httpClient(m.transport), m.tokenBreaker)
	m.apiBreaker = circuitbreaker.NewGoBreaker("hubspot-api", circuitbreaker.HTTPConfig, m.logger)

	return m, nil
}

// BreakerStats reports the token endpoint and API circuit breakers
func (m *Manager) BreakerStats() []circuitbreaker.Stats {
	return []circuitbreaker.Stats{m.tokenBreaker.Stats(), m.apiBreaker.Stats()}
}

func (m *Manager) httpClient(transport http.RoundTripper) *http.Client {
	opts := []commonhttp.ClientOption{commonhttp.WithTransport(transport)}
	if m.cfg.Timeout > 0 {
		opts = append(opts, commonhttp.WithTimeout(m.cfg.Timeout))
	}
	return commonhttp.NewHTTPClient(opts...)
}

// Authorize returns the HubSpot consent URL for a user and organization.
// It makes no network call.
func (m *Manager) Authorize(userID, orgID string) string {
	return m.oauth.AuthCodeURL(State{UserID: userID, OrgID: orgID}.String())
}

// HandleCallback completes an authorization: it exchanges the code for
// tokens and stores the resulting record with the credential TTL.
func (m *Manager) HandleCallback(ctx context.Context, params CallbackParams) (*TokenRecord, error) {
	logger := m.logger.WithContext(ctx)

	if params.Error != "" {
		logger.Warn("Authorization denied by provider",
			logging.Field{Key: "provider_error", Value: params.Error},
		)
		return nil, errOAuthDenied(params.Error, params.ErrorDescription)
	}
	if params.Code == "" {
		return nil, errMissingCode()
	}

	state, err := ParseState(params.State)
	if err != nil {
		return nil, err
	}
	key := state.Key()

	// The pending marker may never have been written.
	if err := m.store.Delete(ctx, key); err != nil {
		logger.Warn("Failed to clear pending authorization",
			logging.Field{Key: "key", Value: key},
			logging.Field{Key: "error", Value: err.Error()},
		)
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
		"redirect_uri":  {m.cfg.RedirectURL},
		"code":          {params.Code},
	}

	resp, err := m.requestToken(ctx, form, CodeTokenExchangeFailed)
	if err != nil {
		return nil, err
	}

	record := &TokenRecord{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.expiresAt(m.now()),
	}
	if err := m.save(ctx, key, record); err != nil {
		return nil, err
	}

	logger.Info("HubSpot authorization completed",
		logging.Field{Key: "user_id", Value: state.UserID},
		logging.Field{Key: "org_id", Value: state.OrgID},
		logging.Field{Key: "expires_at", Value: record.ExpiresAt.Format(time.RFC3339)},
	)
	return record, nil
}

// GetCredentials returns the stored record for a user and organization.
// An expired access token is refreshed first and the record re-stored.
func (m *Manager) GetCredentials(ctx context.Context, userID, orgID string) (*TokenRecord, error) {
	key := State{UserID: userID, OrgID: orgID}.Key()

	record, err := m.load(ctx, key)
	if err != nil {
		return nil, err
	}

	if !record.Expired(m.now()) {
		return record, nil
	}
	if record.RefreshToken == "" {
		return nil, errMissingRefreshToken()
	}

	// The shared refresh must outlive any single caller; the HTTP client
	// timeout still bounds the token request.
	flightCtx := context.WithoutCancel(ctx)
	ch := m.refreshFlight.DoChan(key, func() (interface{}, error) {
		return m.refreshExclusive(flightCtx, key, record)
	})

	select {
	case <-ctx.Done():
		return nil, errors.ConnectionError("credential refresh abandoned", ctx.Err()).WithCode(CodeRefreshFailed)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			m.logger.WithContext(ctx).Debug("Joined in-flight refresh", logging.Field{Key: "key", Value: key})
		}
		refreshed := *res.Val.(*TokenRecord)
		return &refreshed, nil
	}
}

func (m *Manager) load(ctx context.Context, key string) (*TokenRecord, error) {
	raw, found, err := m.store.Get(ctx, key)
	if stderrors.Is(err, credentials.ErrUnreadableValue) {
		m.logger.WithContext(ctx).Warn("Stored credentials cannot be opened",
			logging.Field{Key: "key", Value: key},
			logging.Field{Key: "error", Value: err.Error()},
		)
		return nil, errInvalidCredentialsFormat(err)
	}
	if err != nil {
		return nil, errors.ConnectionError("failed to read credential store", err)
	}
	if !found {
		return nil, errNoCredentials(key)
	}

	record, err := ParseCredentials(raw)
	if err != nil {
		m.logger.WithContext(ctx).Warn("Stored credentials are unreadable",
			logging.Field{Key: "key", Value: key},
			logging.Field{Key: "error", Value: err.Error()},
		)
		return nil, err
	}
	return record, nil
}

// refreshExclusive refreshes under the cross-instance lock when one is configured
func (m *Manager) refreshExclusive(ctx context.Context, key string, record *TokenRecord) (*TokenRecord, error) {
	if m.locker == nil {
		return m.refresh(ctx, key, record)
	}

	lock, err := m.locker.AcquireLock(ctx, "refresh:"+key, refreshLockExpiry)
	if err != nil {
		return nil, errors.ConnectionError("failed to acquire refresh lock", err).WithCode(CodeRefreshFailed)
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			m.logger.Warn("Failed to release refresh lock",
				logging.Field{Key: "lock", Value: lock.Key()},
				logging.Field{Key: "error", Value: err.Error()},
			)
		}
	}()

	// Another instance may have refreshed while this one waited.
	current, err := m.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !current.Expired(m.now()) {
		return current, nil
	}
	if current.RefreshToken == "" {
		return nil, errMissingRefreshToken()
	}

	return m.refresh(ctx, key, current)
}

func (m *Manager) refresh(ctx context.Context, key string, record *TokenRecord) (*TokenRecord, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
		"refresh_token": {record.RefreshToken},
	}

	resp, err := m.requestToken(ctx, form, CodeRefreshFailed)
	if err != nil {
		return nil, err
	}

	refreshed := &TokenRecord{
		AccessToken:  resp.AccessToken,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    resp.expiresAt(m.now()),
	}
	if err := m.save(ctx, key, refreshed); err != nil {
		return nil, err
	}

	m.logger.WithContext(ctx).Info("Refreshed HubSpot access token",
		logging.Field{Key: "key", Value: key},
		logging.Field{Key: "expires_at", Value: refreshed.ExpiresAt.Format(time.RFC3339)},
	)
	return refreshed, nil
}

// requestToken posts a form to the token endpoint. Every failure carries
// failCode; a non-200 answer keeps the raw body as details.
func (m *Manager) requestToken(ctx context.Context, form url.Values, failCode string) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.InternalError("failed to create token request", err).WithCode(failCode)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.tokenClient.Do(ctx, req)
	if err != nil {
		return nil, errors.ConnectionError("token request failed", err).WithCode(failCode)
	}

	if !resp.OK() {
		m.logger.WithContext(ctx).Warn("Token endpoint rejected request",
			logging.Field{Key: "grant_type", Value: form.Get("grant_type")},
			logging.Field{Key: "status", Value: resp.StatusCode},
			logging.Field{Key: "duration_ms", Value: resp.Duration.Milliseconds()},
		)
		return nil, errors.UpstreamError("token request failed", resp.StatusCode, string(resp.Body)).WithCode(failCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		appErr := errors.UpstreamError("token response is not valid JSON", resp.StatusCode, string(resp.Body)).WithCode(failCode)
		appErr.Cause = err
		return nil, appErr
	}
	if token.AccessToken == "" {
		return nil, errors.UpstreamError("token response has no access_token", resp.StatusCode, string(resp.Body)).WithCode(failCode)
	}

	return &token, nil
}

func (m *Manager) save(ctx context.Context, key string, record *TokenRecord) error {
	value, err := record.encode()
	if err != nil {
		return errors.InternalError("failed to encode credentials", err)
	}
	if err := m.store.Set(ctx, key, value, m.cfg.CredentialTTL); err != nil {
		return errors.ConnectionError(fmt.Sprintf("failed to store credentials for %s", key), err)
	}
	return nil
}

package hubspot

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"hubspot-connector/internal/credentials"
	"hubspot-connector/internal/redis"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// fakeProvider stands in for the HubSpot token and contacts endpoints
type fakeProvider struct {
	server *httptest.Server

	tokenCalls atomic.Int32
	apiCalls   atomic.Int32

	mu          sync.Mutex
	tokenStatus int
	tokenBody   string
	apiStatus   int
	apiBody     string
	lastForm    url.Values
	lastAuth    string

	// tokenGate, when set, blocks token requests until it is closed
	tokenGate chan struct{}
}

func newFakeProvider(t *testing.T) *fakeProvider {
	p := &fakeProvider{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"access-1","refresh_token":"refresh-1","expires_in":1800,"token_type":"bearer"}`,
		apiStatus:   http.StatusOK,
		apiBody:     `{"results":[]}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		p.tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		p.mu.Lock()
		p.lastForm = r.PostForm
		status, body, gate := p.tokenStatus, p.tokenBody, p.tokenGate
		p.mu.Unlock()

		if gate != nil {
			<-gate
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/crm/v3/objects/contacts", func(w http.ResponseWriter, r *http.Request) {
		p.apiCalls.Add(1)

		p.mu.Lock()
		p.lastAuth = r.Header.Get("Authorization")
		status, body := p.apiStatus, p.apiBody
		p.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) setToken(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenStatus, p.tokenBody = status, body
}

func (p *fakeProvider) setAPI(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.apiStatus, p.apiBody = status, body
}

func (p *fakeProvider) form() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastForm
}

func (p *fakeProvider) authorization() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAuth
}

func (p *fakeProvider) config() Config {
	return Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8000/integrations/hubspot/oauth2callback",
		Scopes:       []string{"oauth", "crm.objects.contacts.read"},
		AuthURL:      p.server.URL + "/oauth/authorize",
		TokenURL:     p.server.URL + "/oauth/v1/token",
		APIBaseURL:   p.server.URL,
		Timeout:      5 * time.Second,
	}
}

type testEnv struct {
	provider *fakeProvider
	manager  *Manager
	store    credentials.Store
	redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	provider := newFakeProvider(t)

	mr := miniredis.RunT(t)
	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := credentials.NewRedisStore(client, "")
	manager, err := NewManager(provider.config(), store, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	return &testEnv{provider: provider, manager: manager, store: store, redis: mr}
}

func (e *testEnv) seed(t *testing.T, key, value string) {
	require.NoError(t, e.redis.Set(key, value))
	e.redis.SetTTL(key, DefaultCredentialTTL)
}

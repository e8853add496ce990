package server_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"golang.org/x/oauth2"

	"github.com/openkpis/edge-service/catalog"
	"github.com/openkpis/edge-service/catalog/repofakes"
	"github.com/openkpis/edge-service/githubapi"
	"github.com/openkpis/edge-service/githubapi/githubtest"
	"github.com/openkpis/edge-service/internal/config"
	"github.com/openkpis/edge-service/publisher"
	"github.com/openkpis/edge-service/server"
	"github.com/openkpis/edge-service/sessions"
)

const testSigningKey = "test-signing-key"

// testConfig overrides the env-backed config with fixed values so tests
// do not depend on the environment.
type testConfig struct {
	config.EnvVars
	config.Cors
	config.GitHub
	config.Session
	config.Database
}

func (testConfig) GetEnv() string { return "TEST" }

func (testConfig) GetAllowedOrigins() config.AllowedOrigins {
	return config.AllowedOrigins{"https://openkpis.org": {}}
}

func (testConfig) GetSessionSigningKey() string { return testSigningKey }

type harness struct {
	server    *server.Server
	github    *githubtest.Server
	tokenSrv  *httptest.Server
	signer    *sessions.Signer
	entries   *repofakes.FakeEntryRepo
	audit     *repofakes.FakeAuditRepo
	dashboard *repofakes.FakeDashboardKPIRepo
}

// newHarness wires a Server against a fake GitHub API, a fake OAuth token
// endpoint, and in-memory catalog repos.
func newHarness() *harness {
	gh := githubtest.New()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gho_testtoken","token_type":"bearer"}`))
	}))

	entries := repofakes.NewFakeEntryRepo()
	dashboard := repofakes.NewFakeDashboardKPIRepo(entries)
	audit := repofakes.NewFakeAuditRepo()

	cfg := testConfig{}
	ghClient := githubapi.New(gh.URL, cfg.GetGitHubOwner(), cfg.GetGitHubRepo())
	signer := sessions.NewSigner(testSigningKey)

	srv := server.New(cfg, server.Deps{
		Signer: signer,
		OAuth: githubapi.NewOAuthWithEndpoint("client-id", "client-secret", "https://edge.test/oauth/callback", cfg.GetOAuthScopes(), oauth2.Endpoint{
			AuthURL:  tokenSrv.URL + "/authorize",
			TokenURL: tokenSrv.URL + "/token",
		}),
		GitHub:    ghClient,
		Publisher: publisher.New(ghClient, cfg.GetGitHubBaseBranch()),
		Catalog: catalog.NewService(catalog.Repos{
			Entries:    entries,
			Dashboards: dashboard,
			Audit:      audit,
		}),
	})

	return &harness{
		server:    srv,
		github:    gh,
		tokenSrv:  tokenSrv,
		signer:    signer,
		entries:   entries,
		audit:     audit,
		dashboard: dashboard,
	}
}

func (h *harness) Close() {
	h.github.Close()
	h.tokenSrv.Close()
}

// sessionCookie mints a valid signed session cookie for the given user.
func (h *harness) sessionCookie(login string) *http.Cookie {
	session := sessions.New("gho_testtoken", sessions.User{Login: login, Name: "Test User"}, time.Hour)
	token, err := h.signer.Sign(session)
	if err != nil {
		panic(err)
	}
	return &http.Cookie{Name: sessions.CookieName, Value: token}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, req)
	return rec
}

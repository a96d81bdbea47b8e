package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamdigital/landing/internal/analytics"
	"github.com/dreamdigital/landing/internal/config"
	"github.com/dreamdigital/landing/internal/consent"
	"github.com/dreamdigital/landing/internal/content"
	"github.com/dreamdigital/landing/internal/leads"
	"github.com/dreamdigital/landing/internal/middleware"
	"github.com/dreamdigital/landing/internal/models"
	"github.com/dreamdigital/landing/internal/storage"
	"github.com/dreamdigital/landing/internal/submission"
)

const (
	chromeUA     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	testPassword = "s3cret-operator"
)

var (
	hashOnce     sync.Once
	passwordHash string
)

func testPasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		hash, err := middleware.HashPassword(testPassword)
		require.NoError(t, err)
		passwordHash = hash
	})
	return passwordHash
}

type switchRelay struct {
	mu  sync.Mutex
	err error
	n   int
}

func (r *switchRelay) Send(context.Context, string, submission.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return r.err
}

type testEnv struct {
	app   *fiber.App
	deps  *Deps
	relay *switchRelay
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Storage:        config.StorageMemory,
		SessionTimeout: 30 * time.Minute,
		ProxyMode:      "none",
		Admin: config.AdminConfig{
			PasswordHash: testPasswordHash(t),
			JWTSecret:    "handler-test-secret",
			TokenTTL:     time.Hour,
		},
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	store := storage.NewMemory()
	ledger := leads.NewLedger(store)
	agg := analytics.New(store, analytics.WithSessionTimeout(cfg.SessionTimeout))
	relay := &switchRelay{}
	views := NewViews()

	d := &Deps{
		Config:    cfg,
		Content:   content.NewProvider(content.Default()),
		Analytics: agg,
		Ledger:    ledger,
		Consent:   consent.NewStore(store),
		Flow:      submission.NewFlow(submission.TokenVerifier{}, relay, ledger, agg),
		Views:     views,
	}

	app := fiber.New(fiber.Config{Views: views})
	Register(app, d)
	return &testEnv{app: app, deps: d, relay: relay}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	resp := e.do(t, jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"`+testPassword+`"}`))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLandingPageRendersAndRecordsView(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Referer", "https://www.google.com/search?q=websites")
	resp := env.do(t, req)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := bodyString(t, resp)
	assert.Contains(t, body, "DREAM DIGITAL | Websites in 72 hours")
	assert.Contains(t, body, `id="cookie-banner"`)

	names := map[string]bool{}
	for _, c := range resp.Cookies() {
		names[c.Name] = true
	}
	assert.True(t, names[visitorCookie])
	assert.True(t, names[sessionCookie])

	rec := env.deps.Analytics.Snapshot(context.Background())
	assert.Equal(t, 1, rec.TotalPageViews)
	assert.Equal(t, 1, rec.UniqueVisitors)
	assert.Equal(t, 1, rec.Sessions)
	assert.Equal(t, 1, rec.SearchTraffic)
	assert.Equal(t, 1, rec.Browsers["Chrome"])
	assert.Equal(t, 1, rec.DeviceTypes.Desktop)
}

func TestLandingPageFallbackTokenFollowsSiteKey(t *testing.T) {
	env := newTestEnv(t)
	body := bodyString(t, env.do(t, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Contains(t, body, `var fallbackToken = "`+submission.DevelopmentToken+`";`)
	assert.NotContains(t, body, "recaptcha/api.js")

	env = newTestEnv(t, func(c *config.Config) { c.Recaptcha.SiteKey = "site-key" })
	body = bodyString(t, env.do(t, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Contains(t, body, `var fallbackToken = "";`)
	assert.Contains(t, body, "recaptcha/api.js?render=site-key")
}

func TestLandingPageSessionCookiesContinueSession(t *testing.T) {
	env := newTestEnv(t)

	first := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := first.Cookies()

	second := env.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/", nil), cookies))
	require.Equal(t, fiber.StatusOK, second.StatusCode)

	rec := env.deps.Analytics.Snapshot(context.Background())
	assert.Equal(t, 2, rec.TotalPageViews)
	assert.Equal(t, 1, rec.UniqueVisitors)
	assert.Equal(t, 1, rec.Sessions)
	assert.Equal(t, 0, rec.BouncedSessions)
	assert.InDelta(t, 2.0, rec.PagesPerSession, 1e-9)
}

func TestLandingPageSkipsSpamReferrer(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Referer", "http://semalt.com/crawler")
	resp := env.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 0, env.deps.Analytics.Snapshot(context.Background()).TotalPageViews)
}

func TestConsentGatesTracking(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.RequireConsent = true })

	first := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := first.Cookies()
	assert.Equal(t, 0, env.deps.Analytics.Snapshot(context.Background()).TotalPageViews)

	put := withCookies(jsonRequest(http.MethodPut, "/api/consent", `{"analytics":true}`), cookies)
	resp := env.do(t, put)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out struct {
		Consent models.CookieConsent `json:"consent"`
		Decided bool                 `json:"decided"`
	}
	decode(t, resp, &out)
	assert.True(t, out.Consent.Necessary)
	assert.True(t, out.Consent.Analytics)
	assert.True(t, out.Decided)

	page := env.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/", nil), cookies))
	assert.NotContains(t, bodyString(t, page), `id="cookie-banner"`)
	assert.Equal(t, 1, env.deps.Analytics.Snapshot(context.Background()).TotalPageViews)
}

func TestGetConsentDefaults(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/consent", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Consent models.CookieConsent `json:"consent"`
		Decided bool                 `json:"decided"`
	}
	decode(t, resp, &out)
	assert.Equal(t, models.DefaultConsent(), out.Consent)
	assert.False(t, out.Decided)
}

func TestSubmitLeadSuccess(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, jsonRequest(http.MethodPost, "/api/leads",
		`{"name":"Acme","phone":"555-0100","pricingType":"lite","token":"tok"}`))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	all := env.deps.Ledger.ListAll(context.Background())
	require.Len(t, all, 1)
	assert.Equal(t, "Acme", all[0].Name)
	assert.Equal(t, models.LeadNew, all[0].Status)
	assert.Equal(t, 1, env.deps.Analytics.Snapshot(context.Background()).TotalSubmissions)
}

func TestSubmitLeadFailuresShareGenericError(t *testing.T) {
	env := newTestEnv(t)

	// Empty token fails verification
	verify := env.do(t, jsonRequest(http.MethodPost, "/api/leads", `{"name":"Acme","phone":"555-0100"}`))
	verifyBody := bodyString(t, verify)

	env.relay.err = errors.New("relay down")
	relay := env.do(t, jsonRequest(http.MethodPost, "/api/leads", `{"name":"Acme","phone":"555-0100","token":"tok"}`))
	relayBody := bodyString(t, relay)

	assert.Equal(t, fiber.StatusBadGateway, verify.StatusCode)
	assert.Equal(t, verify.StatusCode, relay.StatusCode)
	assert.Equal(t, verifyBody, relayBody)
	assert.Contains(t, verifyBody, genericSubmissionError)

	assert.Equal(t, 1, env.relay.n)
	assert.Empty(t, env.deps.Ledger.ListAll(context.Background()))
	assert.Equal(t, 0, env.deps.Analytics.Snapshot(context.Background()).TotalSubmissions)
}

func TestSubmitLeadValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, jsonRequest(http.MethodPost, "/api/leads", `{"phone":"555-0100","token":"tok"}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "name is required")
	assert.Equal(t, 0, env.relay.n)
}

func TestTrackingBeacons(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, jsonRequest(http.MethodPost, "/api/track/timing", `{"loadTimeMs":120.5}`))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/api/track/timing", `{"loadTimeMs":-3}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/api/track/leave", `{"durationMs":90000}`))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/api/track/leave", `{"durationMs":0}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	rec := env.deps.Analytics.Snapshot(context.Background())
	assert.Equal(t, []float64{120.5}, rec.PageLoadTimes)
	assert.InDelta(t, 120.5, rec.AverageLoadTime, 1e-9)
	assert.InDelta(t, 90000.0, rec.AverageTimeOnSite, 1e-9)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/admin/session", "/api/admin/leads", "/api/admin/analytics", "/api/admin/leads.csv", "/api/admin/seo"} {
		resp := env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"nope"}`))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"`+testPassword+`"}`))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AdminCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	page := env.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/admin/analytics", nil), []*http.Cookie{cookie}))
	assert.Equal(t, fiber.StatusOK, page.StatusCode)
}

func TestAdminSessionDescribesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	resp := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/admin/session", nil), token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out struct {
		Subject   string    `json:"subject"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	decode(t, resp, &out)
	assert.Equal(t, "admin", out.Subject)
	assert.True(t, out.ExpiresAt.After(time.Now()))
}

func TestAdminLoginDisabledWithoutConfig(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Admin = config.AdminConfig{} })

	resp := env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"x"}`))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdminLeadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	ctx := context.Background()

	lead := env.deps.Ledger.Append(ctx, models.Lead{Name: "Acme, Inc.", Phone: "555-0100"})
	env.deps.Ledger.Append(ctx, models.Lead{Name: "Beta", Phone: "555-0101"})

	resp := env.do(t, authed(jsonRequest(http.MethodPatch, "/api/admin/leads/"+lead.ID, `{"status":"contacted"}`), token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var patched struct {
		Updated bool `json:"updated"`
	}
	decode(t, resp, &patched)
	assert.True(t, patched.Updated)

	resp = env.do(t, authed(jsonRequest(http.MethodPatch, "/api/admin/leads/missing", `{"status":"lost"}`), token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &patched)
	assert.False(t, patched.Updated)

	resp = env.do(t, authed(jsonRequest(http.MethodPatch, "/api/admin/leads/"+lead.ID, `{"status":"archived"}`), token))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/admin/leads", nil), token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Leads []models.Lead `json:"leads"`
		Stats leads.Stats   `json:"stats"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Leads, 2)
	assert.Equal(t, 2, list.Stats.Total)
	assert.Equal(t, 1, list.Stats.Contacted)
	assert.Equal(t, 1, list.Stats.New)

	resp = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/admin/leads?status=contacted", nil), token))
	decode(t, resp, &list)
	require.Len(t, list.Leads, 1)
	assert.Equal(t, lead.ID, list.Leads[0].ID)

	resp = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/admin/leads.csv", nil), token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "dream_digital_leads_")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	csv := bodyString(t, resp)
	assert.True(t, strings.HasPrefix(csv, "ID,Name/Company,Phone,Email,Pricing,Date,Status\n"))
	assert.Contains(t, csv, ",Acme, Inc.,555-0100,")
	assert.Contains(t, csv, "Not provided")
}

func TestAdminAnalyticsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))

	resp := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/admin/analytics", nil), token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out struct {
		Analytics      models.AnalyticsRecord `json:"analytics"`
		ActiveSessions int                    `json:"activeSessions"`
		TopDevice      string                 `json:"topDevice"`
	}
	decode(t, resp, &out)
	assert.Equal(t, 1, out.Analytics.TotalPageViews)
	assert.Equal(t, 1, out.ActiveSessions)
	assert.Equal(t, models.DeviceDesktop, out.TopDevice)

	resp = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/admin/analytics.csv", nil), token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "dream-digital-analytics-")
	assert.Contains(t, bodyString(t, resp), "Total Page Views,1")

	resp = env.do(t, authed(httptest.NewRequest(http.MethodPost, "/api/admin/analytics/reset", nil), token))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, env.deps.Analytics.Snapshot(context.Background()).TotalPageViews)

	resp = env.do(t, authed(httptest.NewRequest(http.MethodPost, "/api/admin/analytics/reset?confirm=true", nil), token))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, env.deps.Analytics.Snapshot(context.Background()).TotalPageViews)
}

func TestAdminSEOReportHasNoMissingTags(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	resp := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/api/admin/seo", nil), token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Report struct {
			Title       string `json:"title"`
			Canonical   string `json:"canonical"`
			JSONLDValid *bool  `json:"jsonLdValid"`
		} `json:"report"`
		Missing []string `json:"missing"`
	}
	decode(t, resp, &out)
	assert.Empty(t, out.Missing)
	assert.Equal(t, content.Default().Meta.Title, out.Report.Title)
	assert.Equal(t, content.Default().Meta.URL, out.Report.Canonical)
	require.NotNil(t, out.Report.JSONLDValid)
	assert.True(t, *out.Report.JSONLDValid)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]any
	decode(t, resp, &out)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, config.StorageMemory, out["storage"])
}

func TestExternalReferrerIgnoresSameHost(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Cookies()

	// New session from an in-site link counts as direct
	var fresh []*http.Cookie
	for _, c := range cookies {
		if c.Name == visitorCookie {
			fresh = append(fresh, c)
		}
	}
	req := withCookies(httptest.NewRequest(http.MethodGet, "http://example.com/", nil), fresh)
	req.Header.Set("Referer", "http://example.com/#pricing")
	env.do(t, req)

	rec := env.deps.Analytics.Snapshot(context.Background())
	assert.Equal(t, 2, rec.DirectTraffic)
	assert.Equal(t, 0, rec.ReferralTraffic)
}

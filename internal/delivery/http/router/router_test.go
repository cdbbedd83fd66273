package router

import (
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"knot-api/internal/config"
	"knot-api/internal/delivery/http/handler"
	"knot-api/internal/domain/entity"
	"knot-api/internal/usecase"
)

const (
	chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	nativeUA = "Dart/3.2 (dart:io)"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:    "Knot API",
			Version: "1.0.0",
			Port:    8000,
			Env:     config.EnvProduction,
		},
		Callback: config.CallbackConfig{
			DeepLinkScheme: "knot",
			DeepLinkHost:   "linkedin-callback",
			WebHost:        "localhost",
			WebDefaultPort: "52444",
			WebPath:        "/#/import/linkedin",
			RedirectStatus: fiber.StatusFound,
			PageDelay:      2,
		},
		CORS: config.CORSConfig{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, logger *zap.Logger) *fiber.App {
	t.Helper()

	pages, err := handler.NewPages()
	require.NoError(t, err)

	r := NewRouter(
		cfg,
		logger,
		handler.NewHealthHandler(cfg),
		handler.NewLinkedInHandler(usecase.NewCallbackUsecase(cfg, logger), cfg, pages, logger),
		handler.NewWebhookHandler(usecase.NewEmailUsecase(logger), logger),
		handler.NewCronHandler(usecase.NewCronUsecase(logger), logger),
	)
	return r.Setup()
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func callbackRequest(query, userAgent string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/linkedin-callback?"+query, nil)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return req
}

func decodeJSON(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestLinkedInCallback_Redirects(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	tests := []struct {
		name      string
		query     string
		userAgent string
		referer   string
		location  string
	}{
		{
			name:      "native code and state",
			query:     "code=X&state=Y",
			userAgent: nativeUA,
			location:  "knot://linkedin-callback?code=X&state=Y",
		},
		{
			name:     "native without user agent",
			query:    "code=X",
			location: "knot://linkedin-callback?code=X&state=",
		},
		{
			name:      "native error wins over code",
			query:     "code=X&error=user_cancelled_authorize&state=Y",
			userAgent: nativeUA,
			location:  "knot://linkedin-callback?error=user_cancelled_authorize",
		},
		{
			name:      "browser error",
			query:     "error=access_denied",
			userAgent: chromeUA,
			location:  "http://localhost:52444/#/import/linkedin?error=access_denied",
		},
		{
			name:      "browser error follows referer port",
			query:     "error=access_denied",
			userAgent: chromeUA,
			referer:   "http://localhost:61000/",
			location:  "http://localhost:61000/#/import/linkedin?error=access_denied",
		},
		{
			name:      "decoded values are forwarded as is",
			query:     "code=a%2Fb&state=x%20y",
			userAgent: nativeUA,
			location:  "knot://linkedin-callback?code=a/b&state=x y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := callbackRequest(tt.query, tt.userAgent)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}

			resp, _ := doRequest(t, app, req)
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

func TestLinkedInCallback_BrowserPage(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	resp, body := doRequest(t, app, callbackRequest("code=ABC", chromeUA))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, html.UnescapeString(body), "http://localhost:52444/#/import/linkedin?code=ABC&state=")
	assert.Contains(t, body, "LinkedIn Authorization Successful")
	assert.Contains(t, body, "http-equiv=\"refresh\"")
}

func TestLinkedInCallback_BrowserPageRefererPort(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	req := callbackRequest("code=ABC&state=s1", "Mozilla/5.0 Firefox/121.0")
	req.Header.Set("Referer", "http://localhost:53123/#/import")

	resp, body := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html.UnescapeString(body), "http://localhost:53123/#/import/linkedin?code=ABC&state=s1")
}

func TestLinkedInCallback_MissingCode(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	for _, query := range []string{"", "state=only", "foo=bar&baz=1"} {
		t.Run(query, func(t *testing.T) {
			resp, body := doRequest(t, app, callbackRequest(query, nativeUA))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
			assert.Contains(t, body, "No authorization code received")
			assert.Contains(t, body, "Debug Information")
		})
	}
}

func TestLinkedInCallback_MissingCodeShowsParams(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	_, body := doRequest(t, app, callbackRequest("foo=bar&state=st", chromeUA))
	unescaped := html.UnescapeString(body)

	assert.Contains(t, unescaped, "'foo': 'bar'")
	assert.Contains(t, unescaped, "'state': 'st'")
	assert.Contains(t, unescaped, "Error Parameter:</strong> None")
	assert.Contains(t, unescaped, "State Parameter:</strong> st")
}

func TestLinkedInCallback_MissingCodeEscapesInput(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	_, body := doRequest(t, app, callbackRequest("state="+url.QueryEscape("<script>alert(1)</script>"), nativeUA))
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestLinkedInCallback_RedactedLogs(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.RedactSecrets = true
	core, logs := observer.New(zapcore.InfoLevel)
	app := newTestApp(t, cfg, zap.New(core))

	resp, _ := doRequest(t, app, callbackRequest("code=SECRET&state=S", nativeUA))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "knot://linkedin-callback?code=SECRET&state=S", resp.Header.Get("Location"))

	entries := logs.FilterMessage("LinkedIn callback received").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, map[string]string{"code": "[REDACTED]", "state": "[REDACTED]"}, fields["query_params"])
	assert.Empty(t, fields["query"])
}

func TestLinkedInCallback_ConfiguredRedirectStatus(t *testing.T) {
	cfg := testConfig()
	cfg.Callback.RedirectStatus = fiber.StatusTemporaryRedirect
	app := newTestApp(t, cfg, zap.NewNop())

	resp, _ := doRequest(t, app, callbackRequest("code=X&state=Y", nativeUA))
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
}

func emailRequest(contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook/email", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestEmailWebhook_Success(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := newTestApp(t, testConfig(), zap.New(core))

	resp, body := doRequest(t, app, emailRequest(fiber.MIMEApplicationJSON,
		`{"to": "alice@inbound.example.com", "from": "bob@x.com"}`))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"status": "success", "message": "Email processed"}, decodeJSON(t, body))

	entries := logs.FilterMessage("Received email").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "bob@x.com", fields["from"])
	assert.Equal(t, "alice@inbound.example.com", fields["to"])
}

func TestEmailWebhook_JSONWithoutContentType(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/webhook/email",
		strings.NewReader(`{"to": "alice@inbound.example.com"}`))
	resp, _ := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEmailWebhook_InvalidRecipient(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	resp, body := doRequest(t, app, emailRequest(fiber.MIMEApplicationJSON, `{"to": "not-an-email"}`))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decoded := decodeJSON(t, body)
	assert.Equal(t, "Invalid email format", decoded["detail"])
	assert.Equal(t, entity.ErrCodeInvalidPayload, decoded["code"])
}

func TestEmailWebhook_MalformedBody(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	for _, body := range []string{`{"to": `, ``, `[]`, `null`} {
		t.Run(body, func(t *testing.T) {
			resp, respBody := doRequest(t, app, emailRequest(fiber.MIMEApplicationJSON, body))

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			decoded := decodeJSON(t, respBody)
			assert.NotEmpty(t, decoded["detail"])
			assert.Equal(t, entity.ErrCodeUnhandledException, decoded["code"])
		})
	}
}

func TestEmailWebhook_FormPayload(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := newTestApp(t, testConfig(), zap.New(core))

	form := url.Values{}
	form.Set("to", "Alice <alice@inbound.example.com>")
	form.Set("from", "bob@x.com")
	form.Set("subject", "Intro")
	form.Set("text", "Hi Alice")
	form.Set("headers", "Message-ID: <intro@x.com>\n")

	resp, body := doRequest(t, app, emailRequest(fiber.MIMEApplicationForm, form.Encode()))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", decodeJSON(t, body)["status"])

	entries := logs.FilterMessage("Received email").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "intro@x.com", fields["message_id"])
	assert.Equal(t, "alice", fields["username"])
}

func TestEmailWebhook_FormInvalidRecipient(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	form := url.Values{}
	form.Set("to", "nobody")

	resp, _ := doRequest(t, app, emailRequest(fiber.MIMEApplicationForm, form.Encode()))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCronEndpoints(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	for _, path := range []string{"/cron/update-health", "/cron/check-meetings"} {
		t.Run(path, func(t *testing.T) {
			resp, body := doRequest(t, app, httptest.NewRequest(http.MethodPost, path, nil))

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, map[string]any{"status": "success"}, decodeJSON(t, body))
		})
	}
}

func TestRootAndHealth(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"message": "Knot API", "version": "1.0.0"}, decodeJSON(t, body))

	resp, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decodeJSON(t, body)["status"])
}

func TestCommonResponseHeaders(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	requests := map[string]*http.Request{
		"json":     httptest.NewRequest(http.MethodGet, "/", nil),
		"redirect": callbackRequest("code=X", nativeUA),
		"error":    emailRequest(fiber.MIMEApplicationJSON, `{"to": "x"}`),
		"notFound": httptest.NewRequest(http.MethodGet, "/nope", nil),
	}

	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			req.Header.Set("Origin", "http://localhost:52444")
			resp, _ := doRequest(t, app, req)

			assert.Equal(t, "true", resp.Header.Get(HeaderSkipBrowserWarning))
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/webhook/email", nil)
	req.Header.Set("Origin", "http://localhost:52444")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type,ngrok-skip-browser-warning")

	resp, _ := doRequest(t, app, req)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "ngrok-skip-browser-warning")
	assert.Equal(t, "true", resp.Header.Get(HeaderSkipBrowserWarning))
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t, testConfig(), zap.NewNop())

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, entity.ErrCodeRouteNotFound, decodeJSON(t, body)["code"])
}

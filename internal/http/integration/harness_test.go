package integration_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/geocoder89/fitspark/internal/api"
	"github.com/geocoder89/fitspark/internal/cache"
	"github.com/geocoder89/fitspark/internal/drafts"
	apphttp "github.com/geocoder89/fitspark/internal/http"
	"github.com/geocoder89/fitspark/internal/http/handlers"
	"github.com/geocoder89/fitspark/internal/session"
	"github.com/gin-gonic/gin"
)

// call is one request the fake backend received.
type call struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   []byte
}

// backend is a programmable stand-in for the REST API. Routes are keyed by
// "METHOD /path"; anything unrouted answers 404.
type backend struct {
	mu     sync.Mutex
	calls  []call
	routes map[string]http.HandlerFunc
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.calls = append(b.calls, call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

func (b *backend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

func (b *backend) callsTo(method, path string) []call {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []call
	for _, c := range b.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newBackend knows two accounts: admin (admin group) and ana (user group),
// both with password "secret".
func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{routes: map[string]http.HandlerFunc{}}

	b.handle(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" || (creds.Username != "admin" && creds.Username != "ana") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-" + creds.Username, "token_type": "bearer"})
	})

	b.handle(http.MethodGet, "/auth/users/me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer tok-admin":
			writeJSON(w, http.StatusOK, map[string]any{"_id": "u1", "username": "admin", "email": "admin@example.com", "groups": []string{"user", "admin"}})
		case "Bearer tok-ana":
			writeJSON(w, http.StatusOK, map[string]any{"_id": "u2", "username": "ana", "email": "ana@example.com", "groups": []string{"user"}})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		}
	})

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv
}

func newRouter(t *testing.T, backendURL string, opts ...func(*handlers.Deps)) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client, err := api.New(backendURL+"/", api.WithLogger(logger))
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}

	deps := handlers.Deps{
		API:      client,
		Sessions: session.NewStore("integration-secret", false, logger),
		Cache:    cache.New(time.Minute),
		Drafts:   drafts.NewMemory(time.Hour),
		Logger:   logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return apphttp.NewRouter(apphttp.RouterDeps{Deps: deps})
}

var siteURL = &url.URL{Scheme: "http", Host: "fitspark.test", Path: "/"}

// browser replays cookies between requests and never follows redirects.
type browser struct {
	t   *testing.T
	h   http.Handler
	jar *cookiejar.Jar
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &browser{t: t, h: h, jar: jar}
}

func (b *browser) do(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range b.jar.Cookies(siteURL) {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.h.ServeHTTP(w, req)
	b.jar.SetCookies(siteURL, w.Result().Cookies())
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, "", nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (b *browser) cookie(name string) *http.Cookie {
	for _, c := range b.jar.Cookies(siteURL) {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (b *browser) login(username string) {
	b.t.Helper()
	w := b.post("/login", url.Values{"username": {username}, "password": {"secret"}})
	if w.Code != http.StatusSeeOther {
		b.t.Fatalf("login %s: got %d, body=%s", username, w.Code, w.Body.String())
	}
}

func location(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	loc := w.Header().Get("Location")
	if loc == "" {
		t.Fatalf("expected a redirect, got %d body=%s", w.Code, w.Body.String())
	}
	return loc
}

func parseHTML(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

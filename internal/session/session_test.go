package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/fitspark/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	store  *session.Store
	router *gin.Engine
	seen   *session.State
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{store: session.NewStore("test-secret", false, nil)}
	r := gin.New()
	r.Use(h.store.Middleware())

	r.GET("/state", func(c *gin.Context) {
		st := session.MustFrom(c)
		copied := *st
		h.seen = &copied
		c.Status(http.StatusNoContent)
	})
	r.POST("/login", func(c *gin.Context) {
		if err := h.store.Login(c, c.Query("token"), c.Query("admin") == "1"); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		st := session.MustFrom(c)
		copied := *st
		h.seen = &copied
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		h.store.Logout(c)
		st := session.MustFrom(c)
		copied := *st
		h.seen = &copied
		c.Status(http.StatusNoContent)
	})
	r.POST("/flash", func(c *gin.Context) {
		h.store.SetFlash(c, session.FlashSuccess, "Recipe created")
		c.Status(http.StatusNoContent)
	})
	r.GET("/flash", func(c *gin.Context) {
		f, ok := h.store.TakeFlash(c)
		if !ok {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, string(f.Kind)+":"+f.Message)
	})

	h.router = r
	return h
}

func (h *harness) do(method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginPersistsAndRehydrates(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/login?token=opaque-token&admin=1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("login status = %d", w.Code)
	}
	if !h.seen.IsLoggedIn || !h.seen.IsAdmin {
		t.Fatalf("flags not flipped in-request: %+v", h.seen)
	}

	tok := cookieNamed(w, session.TokenCookie)
	adm := cookieNamed(w, session.AdminCookie)
	if tok == nil || adm == nil {
		t.Fatal("expected both session cookies")
	}
	if !tok.HttpOnly || tok.Path != "/" || tok.MaxAge != session.MaxAge {
		t.Fatalf("token cookie attributes: %+v", tok)
	}
	if strings.Contains(tok.Value, "opaque-token") {
		t.Fatal("raw token must not appear in the cookie value")
	}

	h.do(http.MethodGet, "/state", []*http.Cookie{tok, adm})
	if !h.seen.IsLoggedIn || !h.seen.IsAdmin || h.seen.Token != "opaque-token" {
		t.Fatalf("rehydrated state = %+v", h.seen)
	}
}

func TestNonAdminLogin(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/login?token=t1", nil)
	h.do(http.MethodGet, "/state", w.Result().Cookies())
	if !h.seen.IsLoggedIn || h.seen.IsAdmin {
		t.Fatalf("state = %+v, want logged in non-admin", h.seen)
	}
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	h := newHarness(t)
	if w := h.do(http.MethodPost, "/login", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLogoutClearsCookiesAndFlags(t *testing.T) {
	h := newHarness(t)
	login := h.do(http.MethodPost, "/login?token=t1&admin=1", nil)

	w := h.do(http.MethodPost, "/logout", login.Result().Cookies())
	if h.seen.IsLoggedIn || h.seen.IsAdmin || h.seen.Token != "" {
		t.Fatalf("state after logout = %+v", h.seen)
	}
	for _, name := range []string{session.TokenCookie, session.AdminCookie} {
		c := cookieNamed(w, name)
		if c == nil || c.MaxAge >= 0 {
			t.Fatalf("cookie %s not expired: %+v", name, c)
		}
	}
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	h := newHarness(t)

	h.do(http.MethodGet, "/state", []*http.Cookie{
		{Name: session.TokenCookie, Value: "forged"},
		{Name: session.AdminCookie, Value: "true"},
	})
	if h.seen.IsLoggedIn || h.seen.IsAdmin {
		t.Fatalf("forged cookies accepted: %+v", h.seen)
	}
}

func TestAdminCookieFromAnotherSecretIsIgnored(t *testing.T) {
	h := newHarness(t)
	other := newHarness(t)
	other.store = session.NewStore("other-secret", false, nil)

	own := h.do(http.MethodPost, "/login?token=t1", nil)
	foreign := other.do(http.MethodPost, "/login?token=t1&admin=1", nil)

	h.do(http.MethodGet, "/state", []*http.Cookie{
		cookieNamed(own, session.TokenCookie),
		cookieNamed(foreign, session.AdminCookie),
	})
	if !h.seen.IsLoggedIn || h.seen.IsAdmin {
		t.Fatalf("state = %+v, want logged in without admin", h.seen)
	}
}

func TestExpiredJWTIsLoggedOut(t *testing.T) {
	h := newHarness(t)

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	login := h.do(http.MethodPost, "/login?token="+expired, nil)
	w := h.do(http.MethodGet, "/state", login.Result().Cookies())
	if h.seen.IsLoggedIn {
		t.Fatal("expired token should rehydrate as logged out")
	}
	if c := cookieNamed(w, session.TokenCookie); c == nil || c.MaxAge >= 0 {
		t.Fatal("expired token cookie should be cleared")
	}
}

func TestMustFromPanicsWithoutMiddleware(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustFrom should panic without the middleware")
		}
	}()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	session.MustFrom(c)
}

func TestFlashIsOneShot(t *testing.T) {
	h := newHarness(t)

	set := h.do(http.MethodPost, "/flash", nil)
	fc := cookieNamed(set, session.FlashCookie)
	if fc == nil {
		t.Fatal("flash cookie not set")
	}

	w := h.do(http.MethodGet, "/flash", []*http.Cookie{fc})
	if w.Body.String() != "success:Recipe created" {
		t.Fatalf("flash = %q", w.Body.String())
	}
	if c := cookieNamed(w, session.FlashCookie); c == nil || c.MaxAge >= 0 {
		t.Fatal("flash should be cleared once read")
	}

	if w := h.do(http.MethodGet, "/flash", nil); w.Body.String() != "none" {
		t.Fatalf("second read = %q", w.Body.String())
	}
}

func TestOwnerScopesByToken(t *testing.T) {
	s := session.NewStore("secret", false, nil)

	if s.Owner(&session.State{}) != "" {
		t.Fatal("anonymous owner should be empty")
	}
	a := s.Owner(&session.State{Token: "a"})
	if a == "" || a == s.Owner(&session.State{Token: "b"}) {
		t.Fatal("owners must differ per token")
	}
}

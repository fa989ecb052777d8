// Package session keeps the per-request auth flags. The durable copy lives in
// two signed cookies; the middleware reads them once per request and hands the
// handlers a *State that Login and Logout mutate together with the cookies.
package session

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/fitspark/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
)

const (
	TokenCookie = "access_token"
	AdminCookie = "is_admin"

	// MaxAge is the lifetime of both session cookies, in seconds.
	MaxAge = 7 * 24 * 60 * 60

	ctxStateKey = "session.state"
)

var ErrEmptyToken = errors.New("session: empty token")

// State is the rehydrated session. It is created once per request by
// Middleware and passed by pointer to whatever needs it.
type State struct {
	IsLoggedIn bool
	IsAdmin    bool
	Token      string
}

type Store struct {
	codec  *securecookie.SecureCookie
	secret []byte
	secure bool
	now    func() time.Time
	logger *slog.Logger
}

// NewStore derives the cookie signing and encryption keys from secret.
// secure controls the Secure attribute of every cookie the store writes.
func NewStore(secret string, secure bool, logger *slog.Logger) *Store {
	hashKey := sha512.Sum512([]byte("fitspark/session/hash:" + secret))
	blockKey := sha256.Sum256([]byte("fitspark/session/block:" + secret))

	codec := securecookie.New(hashKey[:], blockKey[:])
	codec.MaxAge(MaxAge)

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		codec:  codec,
		secret: []byte(secret),
		secure: secure,
		now:    time.Now,
		logger: logger,
	}
}

// Middleware rehydrates State from the cookies. A tampered cookie or an
// expired JWT yields a logged-out state and the stale cookies are cleared.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := s.read(c)
		c.Set(ctxStateKey, st)
		c.Next()
	}
}

func (s *Store) read(c *gin.Context) *State {
	st := &State{}

	raw, err := c.Cookie(TokenCookie)
	if err != nil || raw == "" {
		return st
	}

	var token string
	if err := s.codec.Decode(TokenCookie, raw, &token); err != nil {
		s.logger.DebugContext(c.Request.Context(), "session_cookie_rejected", "error", err.Error())
		s.clearCookies(c)
		return st
	}

	if err := auth.Usable(token, s.now()); err != nil {
		s.logger.DebugContext(c.Request.Context(), "session_token_unusable", "error", err.Error())
		s.clearCookies(c)
		return st
	}

	st.IsLoggedIn = true
	st.Token = token

	if rawAdmin, err := c.Cookie(AdminCookie); err == nil {
		var flag string
		if err := s.codec.Decode(AdminCookie, rawAdmin, &flag); err == nil {
			st.IsAdmin = flag == "true"
		}
	}
	return st
}

// From returns the request's State.
func From(c *gin.Context) (*State, bool) {
	v, ok := c.Get(ctxStateKey)
	if !ok {
		return nil, false
	}
	st, ok := v.(*State)
	return st, ok
}

// MustFrom is From for code paths that run behind Middleware. A missing state
// is a wiring bug, so it panics rather than pretending the user is anonymous.
func MustFrom(c *gin.Context) *State {
	st, ok := From(c)
	if !ok {
		panic("session: MustFrom called outside session.Middleware")
	}
	return st
}

// Login persists token and the admin flag and flips the in-memory flags.
func (s *Store) Login(c *gin.Context, token string, isAdmin bool) error {
	if token == "" {
		return ErrEmptyToken
	}

	encToken, err := s.codec.Encode(TokenCookie, token)
	if err != nil {
		return err
	}
	flag := "false"
	if isAdmin {
		flag = "true"
	}
	encAdmin, err := s.codec.Encode(AdminCookie, flag)
	if err != nil {
		return err
	}

	s.setCookie(c, TokenCookie, encToken, MaxAge)
	s.setCookie(c, AdminCookie, encAdmin, MaxAge)

	st := s.stateFor(c)
	st.IsLoggedIn = true
	st.IsAdmin = isAdmin
	st.Token = token
	return nil
}

// Logout clears both cookies and flags.
func (s *Store) Logout(c *gin.Context) {
	s.clearCookies(c)

	st := s.stateFor(c)
	st.IsLoggedIn = false
	st.IsAdmin = false
	st.Token = ""
}

// Owner returns the key that scopes drafts and cached queries to this
// session. Anonymous sessions share the empty owner.
func (s *Store) Owner(st *State) string {
	if st == nil || st.Token == "" {
		return ""
	}
	return auth.OwnerKey(s.secret, st.Token)
}

func (s *Store) stateFor(c *gin.Context) *State {
	if st, ok := From(c); ok {
		return st
	}
	st := &State{}
	c.Set(ctxStateKey, st)
	return st
}

func (s *Store) clearCookies(c *gin.Context) {
	s.setCookie(c, TokenCookie, "", -1)
	s.setCookie(c, AdminCookie, "", -1)
}

func (s *Store) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		name,
		value,
		maxAge,
		"/",
		"",
		s.secure,
		true, // HttpOnly.
	)
}

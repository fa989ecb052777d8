package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/geocoder89/fitspark/internal/api"
	"github.com/geocoder89/fitspark/internal/cache"
	"github.com/geocoder89/fitspark/internal/drafts"
	"github.com/geocoder89/fitspark/internal/http/middlewares"
	"github.com/geocoder89/fitspark/internal/http/views"
	"github.com/geocoder89/fitspark/internal/notifications"
	"github.com/geocoder89/fitspark/internal/observability"
	"github.com/geocoder89/fitspark/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// Deps are the collaborators shared by every page handler.
type Deps struct {
	API      *api.Client
	Sessions *session.Store
	Cache    *cache.Cache
	Drafts   drafts.Store
	Metrics  *observability.Prom
	Notifier notifications.Notifier
	Logger   *slog.Logger
}

// Base carries Deps and the rendering and error plumbing the handlers share.
type Base struct {
	api      *api.Client
	sessions *session.Store
	cache    *cache.Cache
	drafts   drafts.Store
	metrics  *observability.Prom
	notifier notifications.Notifier
	log      *slog.Logger
}

func NewBase(d Deps) *Base {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Drafts == nil {
		d.Drafts = drafts.NewMemory(drafts.DefaultTTL)
	}
	if d.Notifier == nil {
		d.Notifier = notifications.NewLogNotifier(d.Logger)
	}
	return &Base{
		api:      d.API,
		sessions: d.Sessions,
		cache:    d.Cache,
		drafts:   d.Drafts,
		metrics:  d.Metrics,
		notifier: d.Notifier,
		log:      d.Logger,
	}
}

const msgSessionExpired = "Your session has expired. Please log in again."

// errorView is the data of error.html.
type errorView struct {
	Heading string
	Message string
	Back    string
}

func (b *Base) page(c *gin.Context, title string, data any) views.Page {
	p := views.Page{
		Title:     title,
		Session:   session.MustFrom(c),
		CSRFField: csrf.TemplateField(c.Request),
		Path:      c.Request.URL.Path,
		Admin:     strings.HasPrefix(c.Request.URL.Path, "/admin"),
		Data:      data,
	}
	if f, ok := b.sessions.TakeFlash(c); ok {
		p.Flash = &f
	}
	return p
}

func (b *Base) render(c *gin.Context, status int, name, title string, data any) {
	c.HTML(status, name, b.page(c, title, data))
}

// apiFailure handles the backend outcomes that no view renders itself and
// reports whether the response has been written. A rejected credential ends
// the session wherever it surfaces.
func (b *Base) apiFailure(c *gin.Context, err error) bool {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		b.log.InfoContext(ctx, "session_rejected_by_backend", "path", c.Request.URL.Path)
		b.sessions.Logout(c)
		b.sessions.SetFlash(c, session.FlashError, msgSessionExpired)
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return true

	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		// The browser went away; nobody is left to read a response.
		b.log.DebugContext(ctx, "request_abandoned", "path", c.Request.URL.Path)
		c.Abort()
		return true
	}
	return false
}

// failPage renders the error page for a fetch that left nothing to show.
func (b *Base) failPage(c *gin.Context, err error, what, back string) {
	if b.apiFailure(c, err) {
		return
	}

	status := http.StatusBadGateway
	view := errorView{Heading: "Something went wrong", Back: back}

	var ve *api.ValidationError
	switch {
	case errors.Is(err, api.ErrNotFound):
		status = http.StatusNotFound
		view.Heading = "Not found"
		view.Message = "We couldn't find that " + what + "."
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		view.Message = ve.Message
	default:
		view.Message = "We couldn't load this " + what + ". Please try again."
		b.log.WarnContext(c.Request.Context(), "page_fetch_failed",
			"what", what,
			"path", c.Request.URL.Path,
			"error", err.Error(),
		)
	}
	b.render(c, status, "error.html", view.Heading, view)
}

// loadError turns a list fetch failure into the inline message of the list
// view. The boolean is false when apiFailure already answered.
func (b *Base) loadError(c *gin.Context, err error, what string) (string, bool) {
	if b.apiFailure(c, err) {
		return "", false
	}
	b.log.WarnContext(c.Request.Context(), "list_fetch_failed",
		"what", what,
		"path", c.Request.URL.Path,
		"error", err.Error(),
	)
	return api.Message(err, "Failed to load "+what+"."), true
}

func (b *Base) token(c *gin.Context) string {
	return session.MustFrom(c).Token
}

func (b *Base) owner(c *gin.Context) string {
	return b.sessions.Owner(session.MustFrom(c))
}

// invalidate drops every cached query a successful mutation through route
// made stale.
func (b *Base) invalidate(ctx context.Context, route api.Route) {
	if b.cache == nil {
		return
	}
	for _, resource := range api.Invalidates(route) {
		n := b.cache.InvalidateResource(resource)
		b.log.DebugContext(ctx, "cache_invalidated", "resource", resource, "keys", n)
	}
}

// cached serves a query from the cache or fetches and stores it. Queries are
// keyed by resource, the session's owner key and params, so two sessions
// never share an answer. Failures are not cached.
func cached[T any](ctx context.Context, b *Base, owner, resource string, params url.Values, fetch func(context.Context) (T, error)) (T, error) {
	if b.cache == nil {
		return fetch(ctx)
	}

	key := cache.QueryKey(resource, owner, params)
	if v, ok := b.cache.Get(key); ok {
		if out, ok := v.(T); ok {
			b.metrics.ObserveCache(resource, true)
			return out, nil
		}
	}
	b.metrics.ObserveCache(resource, false)

	out, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	b.cache.Set(key, out)
	return out, nil
}

// redirectBack sends the browser to next when it is a local path, else to
// fallback.
func redirectBack(c *gin.Context, next, fallback string) {
	if next == "" || !middlewares.SafeNext(next) {
		next = fallback
	}
	c.Redirect(http.StatusSeeOther, next)
}

package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRF wraps the engine with gorilla/csrf. The JSON login proxy and the
// machine endpoints are exempt; every form post must carry the token.
func CSRF(key []byte, secure bool, log *slog.Logger) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName("csrf_token"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.WarnContext(r.Context(), "csrf_rejected",
				"path", r.URL.Path,
				"reason", csrf.FailureReason(r).Error(),
			)
			http.Error(w, "Your form expired. Go back, reload the page and try again.", http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		guarded := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if csrfExempt(r) {
				next.ServeHTTP(w, r)
				return
			}
			if !secure {
				// Plain http in development: the origin check would otherwise
				// treat every post as cross-site.
				r = csrf.PlaintextHTTPRequest(r)
			}
			guarded.ServeHTTP(w, r)
		})
	}
}

func csrfExempt(r *http.Request) bool {
	return r.URL.Path == "/api/login" || isMachinePath(r.URL.Path)
}

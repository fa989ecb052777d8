package middlewares

import (
	"net/http"
	"net/url"

	"github.com/geocoder89/fitspark/internal/session"
	"github.com/gin-gonic/gin"
)

// RequireLogin sends anonymous visitors to the login page, remembering where
// they were headed.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := session.MustFrom(c)
		if !st.IsLoggedIn {
			c.Redirect(http.StatusSeeOther, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin lets through sessions carrying the admin flag. Logged-in
// users without it get a 403 page; the backend enforces the same rule on
// every admin call.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := session.MustFrom(c)
		if !st.IsLoggedIn {
			c.Redirect(http.StatusSeeOther, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		if !st.IsAdmin {
			c.String(http.StatusForbidden, "Admin access required.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginURL builds the login redirect. next is kept only when it is a local path.
func LoginURL(next string) string {
	if !SafeNext(next) || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext reports whether next is a same-site absolute path.
func SafeNext(next string) bool {
	if len(next) == 0 || next[0] != '/' {
		return false
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return false
	}
	u, err := url.Parse(next)
	return err == nil && u.Host == "" && u.Scheme == ""
}

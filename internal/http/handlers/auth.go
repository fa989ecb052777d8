package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/fitspark/internal/api"
	"github.com/geocoder89/fitspark/internal/domain/user"
	"github.com/geocoder89/fitspark/internal/http/middlewares"
	"github.com/geocoder89/fitspark/internal/session"
	"github.com/geocoder89/fitspark/internal/validation"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*Base
}

func NewAuthHandler(b *Base) *AuthHandler {
	return &AuthHandler{Base: b}
}

type loginView struct {
	Next     string
	Username string
	Message  string
}

type signUpView struct {
	Form    user.SignUpRequest
	Errors  *validation.Error
	Message string
}

const (
	msgLoginFailed      = "Invalid username or password."
	msgLoginUnavailable = "Login is unavailable right now. Please try again."
)

func (h *AuthHandler) LoginForm(ctx *gin.Context) {
	next := ctx.Query("next")
	if session.MustFrom(ctx).IsLoggedIn {
		redirectBack(ctx, next, "/")
		return
	}
	if !middlewares.SafeNext(next) {
		next = ""
	}
	h.render(ctx, http.StatusOK, "login.html", "Login", loginView{Next: next})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var creds user.Credentials
	next := ctx.PostForm("next")

	if verr := BindForm(ctx, &creds); verr != nil {
		h.render(ctx, http.StatusUnprocessableEntity, "login.html", "Login", loginView{
			Next:     next,
			Username: creds.Username,
			Message:  "Username and password are required.",
		})
		return
	}

	u, err := h.authenticate(ctx, creds)
	if err != nil {
		status, msg := loginFailure(err)
		h.render(ctx, status, "login.html", "Login", loginView{Next: next, Username: creds.Username, Message: msg})
		return
	}

	name := u.Username
	if name == "" {
		name = creds.Username
	}
	h.sessions.SetFlash(ctx, session.FlashSuccess, "Welcome back, "+name+"!")
	redirectBack(ctx, next, "/")
}

// APILogin is the JSON login used by scripted clients. It answers
// {"success":true} and sets the same session cookies as the form login.
func (h *AuthHandler) APILogin(ctx *gin.Context) {
	var creds user.Credentials

	if !BindJSON(ctx, &creds) {
		return
	}

	if _, err := h.authenticate(ctx, creds); err != nil {
		status, msg := loginFailure(err)
		ctx.JSON(status, gin.H{"success": false, "message": msg})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// authenticate exchanges credentials for a token, looks up the account to
// learn its admin flag and starts the session.
func (h *AuthHandler) authenticate(ctx *gin.Context, creds user.Credentials) (user.User, error) {
	rctx := ctx.Request.Context()

	tok, err := h.api.Login(rctx, creds)
	if err != nil {
		h.log.InfoContext(rctx, "login_failed", "username", creds.Username, "error", err.Error())
		return user.User{}, err
	}

	u, err := h.api.Me(rctx, tok.AccessToken)
	if err != nil {
		// The token is good; without the profile the session just is not admin.
		h.log.WarnContext(rctx, "login_profile_lookup_failed", "error", err.Error())
		u = user.User{}
	}

	if err := h.sessions.Login(ctx, tok.AccessToken, u.IsAdmin()); err != nil {
		return user.User{}, err
	}

	h.log.InfoContext(rctx, "login_succeeded", "username", creds.Username, "admin", u.IsAdmin())
	return u, nil
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, api.ErrInvalidCredentials):
		return http.StatusUnauthorized, api.Message(err, msgLoginFailed)
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, msgLoginUnavailable
	}
	return http.StatusBadGateway, msgLoginUnavailable
}

func (h *AuthHandler) SignUpForm(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "signup.html", "Sign Up", signUpView{Errors: &validation.Error{}})
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if verr := BindForm(ctx, &req); verr != nil {
		req.Password = ""
		h.render(ctx, http.StatusUnprocessableEntity, "signup.html", "Sign Up", signUpView{Form: req, Errors: verr})
		return
	}

	err := h.api.SignUp(ctx.Request.Context(), req)
	if err != nil {
		req.Password = ""
		status := http.StatusBadGateway
		var ve *api.ValidationError
		if errors.As(err, &ve) {
			status = http.StatusUnprocessableEntity
		}
		h.log.InfoContext(ctx.Request.Context(), "signup_failed", "username", req.Username, "error", err.Error())
		h.render(ctx, status, "signup.html", "Sign Up", signUpView{
			Form:    req,
			Errors:  &validation.Error{},
			Message: api.Message(err, "We couldn't create your account. Please try again."),
		})
		return
	}

	h.sessions.SetFlash(ctx, session.FlashSuccess, "Account created. Please log in.")
	ctx.Redirect(http.StatusSeeOther, "/login")
}

// LogoutForm only asks for confirmation; a GET must not end the session.
func (h *AuthHandler) LogoutForm(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "logout.html", "Log out", nil)
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.sessions.Logout(ctx)
	h.sessions.SetFlash(ctx, session.FlashSuccess, "You have been logged out.")
	ctx.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	u, err := h.api.Me(ctx.Request.Context(), h.token(ctx))
	if err != nil {
		h.failPage(ctx, err, "profile", "/")
		return
	}
	h.render(ctx, http.StatusOK, "profile.html", "My Profile", u)
}

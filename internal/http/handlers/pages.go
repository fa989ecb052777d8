package handlers

import (
	"net/http"

	"github.com/geocoder89/fitspark/internal/notifications"
	"github.com/geocoder89/fitspark/internal/session"
	"github.com/geocoder89/fitspark/internal/validation"
	"github.com/gin-gonic/gin"
)

// PagesHandler serves the static marketing pages and the contact form.
type PagesHandler struct {
	*Base
}

func NewPagesHandler(b *Base) *PagesHandler {
	return &PagesHandler{Base: b}
}

type ContactRequest struct {
	Name    string `form:"name" binding:"required,max=100"`
	Email   string `form:"email" binding:"required,email"`
	Message string `form:"message" binding:"required,max=5000"`
}

type contactView struct {
	Form   ContactRequest
	Errors *validation.Error
}

func (h *PagesHandler) Home(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "home.html", "", nil)
}

func (h *PagesHandler) About(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "about.html", "About", nil)
}

func (h *PagesHandler) ContactForm(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "contact.html", "Contact", contactView{Errors: &validation.Error{}})
}

// Contact hands a message to the notifier. A notifier outage keeps the form
// filled in so nothing the visitor typed is lost.
func (h *PagesHandler) Contact(ctx *gin.Context) {
	var req ContactRequest
	if verr := BindForm(ctx, &req); verr != nil {
		h.render(ctx, http.StatusUnprocessableEntity, "contact.html", "Contact", contactView{Form: req, Errors: verr})
		return
	}

	err := h.notifier.SendContactMessage(ctx.Request.Context(), notifications.ContactMessage{
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		RequestID: requestIDFrom(ctx),
	})
	if err != nil {
		h.log.WarnContext(ctx.Request.Context(), "contact_message_failed", "error", err.Error())
		verr := &validation.Error{}
		verr.Add("", "unavailable", "We couldn't send your message right now. Please try again in a few minutes.")
		h.render(ctx, http.StatusServiceUnavailable, "contact.html", "Contact", contactView{Form: req, Errors: verr})
		return
	}

	h.sessions.SetFlash(ctx, session.FlashSuccess, "Thanks for reaching out! We'll get back to you soon.")
	ctx.Redirect(http.StatusSeeOther, "/contact")
}

func (h *PagesHandler) SiteContent(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "admin_site_content.html", "Site Content", nil)
}

func (h *PagesHandler) NotFound(ctx *gin.Context) {
	h.render(ctx, http.StatusNotFound, "error.html", "Not found", errorView{
		Heading: "Not found",
		Message: "The page you were looking for does not exist.",
		Back:    "/",
	})
}

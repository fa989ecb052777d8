package integration_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/fitspark/internal/http/handlers"
	"github.com/geocoder89/fitspark/internal/notifications"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifications.ContactMessage
	err  error
}

func (n *recordingNotifier) SendContactMessage(_ context.Context, msg notifications.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func withNotifier(n notifications.Notifier) func(*handlers.Deps) {
	return func(d *handlers.Deps) { d.Notifier = n }
}

var contactForm = url.Values{
	"name":    {"Ana"},
	"email":   {"ana@example.com"},
	"message": {"Do you have vegan plans?"},
}

func TestContactMessageIsDelivered(t *testing.T) {
	_, srv := newBackend(t)
	rec := &recordingNotifier{}
	b := newBrowser(t, newRouter(t, srv.URL, withNotifier(rec)))

	w := b.post("/contact", contactForm)
	if got := location(t, w); got != "/contact" {
		t.Fatalf("redirect = %q, want /contact", got)
	}

	if len(rec.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(rec.sent))
	}
	msg := rec.sent[0]
	if msg.Email != "ana@example.com" || msg.Message != "Do you have vegan plans?" || msg.RequestID == "" {
		t.Fatalf("unexpected message %+v", msg)
	}

	doc := parseHTML(t, b.get("/contact"))
	if got := doc.Find("#flash").Text(); !strings.Contains(got, "Thanks for reaching out!") {
		t.Fatalf("flash = %q", got)
	}
}

func TestContactFormValidation(t *testing.T) {
	_, srv := newBackend(t)
	rec := &recordingNotifier{}
	b := newBrowser(t, newRouter(t, srv.URL, withNotifier(rec)))

	w := b.post("/contact", url.Values{"name": {"Ana"}, "email": {"not-an-email"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if len(rec.sent) != 0 {
		t.Fatal("invalid form must not be sent")
	}
	doc := parseHTML(t, w)
	if v, _ := doc.Find(`input[name="name"]`).Attr("value"); v != "Ana" {
		t.Fatalf("name not kept: %q", v)
	}
}

func TestContactOutageKeepsFormAndTripsBreaker(t *testing.T) {
	_, srv := newBackend(t)
	inner := &recordingNotifier{err: errors.New("smtp: connection refused")}
	protected := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout:          time.Second,
		FailureThreshold: 1,
		Cooldown:         time.Hour,
	})
	b := newBrowser(t, newRouter(t, srv.URL, withNotifier(protected)))

	for i := 0; i < 2; i++ {
		w := b.post("/contact", contactForm)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("post %d: status = %d, want 503", i+1, w.Code)
		}
		doc := parseHTML(t, w)
		if doc.Find("#form-error").Length() != 1 {
			t.Fatalf("post %d: missing form error", i+1)
		}
		if got := doc.Find(`textarea[name="message"]`).Text(); got != "Do you have vegan plans?" {
			t.Fatalf("post %d: message not kept: %q", i+1, got)
		}
	}

	if len(inner.sent) != 1 {
		t.Fatalf("inner notifier called %d times, want 1 (breaker open)", len(inner.sent))
	}
	if protected.State() != "open" {
		t.Fatalf("breaker state = %q, want open", protected.State())
	}
}

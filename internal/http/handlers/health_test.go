package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/fitspark/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func readyz(t *testing.T, h *handlers.HealthHandler) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/readyz", h.Readyz)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return w
}

func TestReadyz(t *testing.T) {
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }
	up := func(context.Context) error { return nil }

	tests := []struct {
		name     string
		ping     handlers.Pinger
		drain    bool
		wantCode int
		wantBody string
	}{
		{"no dependency", nil, false, http.StatusOK, `"ready"`},
		{"dependency up", up, false, http.StatusOK, `"ready"`},
		{"dependency down", down, false, http.StatusServiceUnavailable, `"not_ready"`},
		{"draining", up, true, http.StatusServiceUnavailable, `"shutting_down"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.ping)
			if tt.drain {
				h.Drain()
			}

			w := readyz(t, h)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Fatalf("body = %s, want it to contain %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}

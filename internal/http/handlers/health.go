package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks a dependency the process cannot serve without.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping     Pinger
	draining atomic.Bool
}

// NewHealthHandler builds the probes. A nil ping means there is nothing to wait for.
func NewHealthHandler(ping Pinger) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Drain makes Readyz fail from now on so the load balancer stops sending
// traffic while in-flight requests finish.
func (h *HealthHandler) Drain() {
	h.draining.Store(true)
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.draining.Load() {
		RespondServiceUnavailable(ctx, "shutting_down", "Server is shutting down.")
		return
	}

	if h.ping != nil {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), 500*time.Millisecond)
		defer cancel()

		if err := h.ping(cctx); err != nil {
			RespondServiceUnavailable(ctx, "not_ready", "Draft store is unreachable.")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

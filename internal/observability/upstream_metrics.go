package observability

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ObserveUpstream records one backend API call. status is 0 when no response
// was received.
func (p *Prom) ObserveUpstream(method, route string, status int, err error, elapsed time.Duration) {
	if p == nil {
		return
	}

	label := "none"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	p.UpstreamDuration.WithLabelValues(method, route, label).Observe(elapsed.Seconds())

	if err != nil || status >= 400 {
		p.UpstreamErrors.WithLabelValues(route, classifyUpstream(status, err)).Inc()
	}
}

func classifyUpstream(status int, err error) string {
	switch {
	case status == 401:
		return "unauthorized"
	case status == 404:
		return "not_found"
	case status >= 500:
		return "server"
	case status >= 400:
		return "client"
	}

	if err == nil {
		return "unknown"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}

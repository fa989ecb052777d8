package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// Upstream REST API
	UpstreamDuration *prometheus.HistogramVec
	UpstreamErrors   *prometheus.CounterVec

	// Editors
	DraftOps     *prometheus.CounterVec
	DraftSubmits *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitspark",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fitspark",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "fitspark",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fitspark",
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Backend API call latency by route template and status.",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route", "status"},
		),
		UpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitspark",
				Subsystem: "upstream",
				Name:      "errors_total",
				Help:      "Backend API failures by route template and class.",
			},
			[]string{"route", "class"},
		),
		DraftOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitspark",
				Subsystem: "editor",
				Name:      "ops_total",
				Help:      "Draft edit operations by editor kind and op.",
			},
			[]string{"kind", "op"},
		),
		DraftSubmits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitspark",
				Subsystem: "editor",
				Name:      "submits_total",
				Help:      "Draft submissions by editor kind and result.",
			},
			[]string{"kind", "result"}, // result=ok|invalid|failed
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitspark",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Query cache lookups by resource and result.",
			},
			[]string{"resource", "result"}, // result=hit|miss
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.UpstreamDuration, p.UpstreamErrors,
		p.DraftOps, p.DraftSubmits, p.CacheLookups,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

func (p *Prom) ObserveDraftOp(kind, op string) {
	if p == nil {
		return
	}
	p.DraftOps.WithLabelValues(kind, op).Inc()
}

func (p *Prom) ObserveDraftSubmit(kind, result string) {
	if p == nil {
		return
	}
	p.DraftSubmits.WithLabelValues(kind, result).Inc()
}

func (p *Prom) ObserveCache(resource string, hit bool) {
	if p == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.CacheLookups.WithLabelValues(resource, result).Inc()
}

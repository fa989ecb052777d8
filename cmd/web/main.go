package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/fitspark/internal/api"
	"github.com/geocoder89/fitspark/internal/cache"
	"github.com/geocoder89/fitspark/internal/config"
	"github.com/geocoder89/fitspark/internal/drafts"
	httpx "github.com/geocoder89/fitspark/internal/http"
	"github.com/geocoder89/fitspark/internal/http/handlers"
	"github.com/geocoder89/fitspark/internal/http/middlewares"
	"github.com/geocoder89/fitspark/internal/notifications"
	"github.com/geocoder89/fitspark/internal/observability"
	"github.com/geocoder89/fitspark/internal/redisclient"
	"github.com/geocoder89/fitspark/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	shutdownTracer, err := observability.InitTracer(context.Background(), observability.TracerConfig{
		ServiceName: "fitspark-web",
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	client, err := api.New(cfg.APIBaseURL, api.WithObserver(prom), api.WithLogger(log))
	if err != nil {
		log.Error("api client setup failed", "err", err)
		os.Exit(1)
	}

	// drafts live in redis when configured so they survive restarts and are
	// shared between replicas
	var (
		draftStore drafts.Store
		ping       func(ctx context.Context) error
		rdb        *redisclient.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "fitspark",
		})
		draftStore = drafts.NewRedis(rdb, cfg.DraftTTL)
		ping = rdb.Ping
		log.Info("draft store", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		draftStore = drafts.NewMemory(cfg.DraftTTL)
		log.Info("draft store", "backend", "memory")
	}

	sessions := session.NewStore(cfg.CookieSecret, cfg.IsProd(), log)
	health := handlers.NewHealthHandler(ping)
	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{Timeout: 3 * time.Second, FailureThreshold: 3, Cooldown: 30 * time.Second},
	)

	// set up routers with the log
	router := httpx.NewRouter(httpx.RouterDeps{
		Deps: handlers.Deps{
			API:      client,
			Sessions: sessions,
			Cache:    cache.New(cfg.CacheTTL),
			Drafts:   draftStore,
			Metrics:  prom,
			Notifier: notifier,
			Logger:   log,
		},
		Gatherer:    reg,
		Health:      health,
		ReleaseMode: cfg.Env != "dev",
	})

	// gorilla/csrf wants exactly 32 key bytes; Validate guarantees at least that many.
	handler := middlewares.CSRF([]byte(cfg.CSRFKey)[:32], cfg.IsProd(), log)(router)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "api", cfg.APIBaseURL)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")
	health.Drain()

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				log.Error("redis close failed", "err", err)
			}
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

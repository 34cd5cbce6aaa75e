// devsink is a local development collector for the logship pipeline. It
// accepts the pipeline's flush payloads, prints them, and exposes counters;
// it performs no aggregation or persistence.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AuthSecret  string `env:"AUTH_SECRET"`
	RequireAuth bool   `env:"REQUIRE_AUTH" envDefault:"false"`
	PrintBodies bool   `env:"PRINT_BODIES" envDefault:"true"`
}

func main() {
	logg := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logg.Fatal().Err(err).Msg("parse environment")
	}

	if cfg.RequireAuth && cfg.AuthSecret == "" {
		logg.Fatal().Msg("REQUIRE_AUTH is set but AUTH_SECRET is empty")
	}

	// 1. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// 2. Handlers
	h := newHandler(cfg, logg)
	r.Post("/v1/events", h.handleEvents)
	r.Post("/v1/errors", h.handleErrors)
	r.Get("/status", h.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	// 3. Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logg.Info().Str("addr", srv.Addr).Msg("devsink listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal().Err(err).Msg("listen")
		}
	}()

	// 4. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logg.Fatal().Err(err).Msg("shutdown")
	}
	logg.Info().Msg("devsink exiting")
}

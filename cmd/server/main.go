package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dirgate/internal/auth"
	authhandler "dirgate/internal/auth/handler"
	authmetrics "dirgate/internal/auth/metrics"
	"dirgate/internal/cipher"
	"dirgate/internal/directory"
	"dirgate/internal/platform/config"
	"dirgate/internal/platform/httpserver"
	"dirgate/internal/platform/logger"
	"dirgate/internal/token"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	codec, err := cipher.New(cfg.CipherKey, cfg.CipherIV)
	if err != nil {
		log.Error("invalid cipher configuration", "error", err)
		os.Exit(1)
	}

	source := newSource(cfg, log)

	httpClient, err := token.NewHTTPClient(token.TransportConfig{
		TrustBundlePath:    cfg.TLSTrustBundlePath,
		InsecureSkipVerify: cfg.TLSInsecureSkipVerify,
		Timeout:            cfg.TokenTimeout,
	})
	if err != nil {
		log.Error("invalid token transport configuration", "error", err)
		os.Exit(1)
	}
	tokens := token.NewClient(cfg.TokenURL, httpClient, log)

	svc, err := auth.New(codec, source, tokens,
		auth.WithLogger(log),
		auth.WithMetrics(authmetrics.New()),
	)
	if err != nil {
		log.Error("failed to build auth service", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	authhandler.New(svc, log).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting dirgate", "addr", cfg.Addr, "source_mode", cfg.SourceMode)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// newSource selects the directory backend. Fixture and static modes exist for
// environments with no reachable directory.
func newSource(cfg config.Server, log *slog.Logger) directory.Source {
	switch cfg.SourceMode {
	case "fixture":
		return directory.NewFixtureSource(log)
	case "static":
		return directory.NewStaticSource()
	default:
		return directory.NewLiveDirectory(directory.Config{
			URL:            cfg.DirectoryURL,
			SearchBase:     cfg.DirectorySearchBase,
			BindDN:         cfg.DirectoryBindDN,
			BindPassword:   cfg.DirectoryBindPassword,
			MailDomain:     cfg.DirectoryMailDomain,
			DialTimeout:    cfg.DirectoryDialTimeout,
			RequestTimeout: cfg.DirectoryRequestTimeout,
		}, log)
	}
}

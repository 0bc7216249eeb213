package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/potluckhq/potluck/internal/api"
	"github.com/potluckhq/potluck/internal/auth"
	"github.com/potluckhq/potluck/internal/config"
	"github.com/potluckhq/potluck/internal/eventlog"
	"github.com/potluckhq/potluck/internal/metrics"
	"github.com/potluckhq/potluck/internal/service"
	"github.com/potluckhq/potluck/internal/storage/sqlite"
	"github.com/potluckhq/potluck/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	events := eventlog.NewWorker(eventlog.NewSQLSink(store.DB()), cfg.EventBufferSize)
	events.Start()
	defer events.Shutdown()

	m := metrics.Default()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	groups := service.NewGroupService(store, events, m)
	server := api.NewServer(
		service.NewAuthService(authenticator, jwtManager, store),
		groups,
		service.NewContributionService(store, events, m),
		service.NewWalletService(store, events, m),
		service.NewInsightService(store, groups),
	)

	// h2c allows HTTP/2 without TLS for local and in-cluster traffic.
	handler := h2c.NewHandler(server.Router(jwtManager), &http2.Server{})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}

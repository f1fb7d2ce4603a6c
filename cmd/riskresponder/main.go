package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aigoflow/risk-reporter/internal/config"
	"github.com/aigoflow/risk-reporter/internal/fixture"
	"github.com/aigoflow/risk-reporter/internal/repository"
	"github.com/aigoflow/risk-reporter/internal/services"
	"github.com/aigoflow/risk-reporter/internal/store"
)

func main() {
	var envFile = flag.String("env", "", "Optional .env file to load")
	var fixturePath = flag.String("fixture", "", "Risk table fixture (overrides FIXTURE_PATH)")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *fixturePath != "" {
		cfg.FixturePath = *fixturePath
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	events := repository.NewSQLiteRepository(db).Event()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events.LogEvent(ctx, "info", "startup", "Responder starting", map[string]interface{}{
		"nats_url":     cfg.NatsURL,
		"fixture_path": cfg.FixturePath,
	})

	table, err := fixture.Load(cfg.FixturePath)
	if err != nil {
		events.LogEvent(ctx, "error", "fixture.failed", "Fixture loading failed", map[string]interface{}{
			"fixture_path": cfg.FixturePath,
			"error":        err.Error(),
		})
		slog.Error("Failed to load fixture", "error", err)
		os.Exit(1)
	}
	snapshotService := services.NewSnapshotService(table)
	slog.Info("Fixture loaded", "projections", snapshotService.Projections())

	natsService, err := services.NewNATSService(cfg, snapshotService)
	if err != nil {
		events.LogEvent(ctx, "error", "nats.failed", "NATS service initialization failed", map[string]interface{}{
			"nats_url": cfg.NatsURL,
			"error":    err.Error(),
		})
		slog.Error("Failed to create NATS service", "error", err)
		os.Exit(1)
	}

	discoveryService := services.NewDiscoveryService(natsService.GetConnection(), cfg, snapshotService)
	if err := discoveryService.Start(ctx); err != nil {
		slog.Error("Discovery service failed", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := natsService.Start(ctx); err != nil {
			events.LogEvent(context.Background(), "error", "nats.failed", "NATS service failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("NATS service failed", "error", err)
			cancel()
		}
	}()

	events.LogEvent(ctx, "info", "responder.ready", "Responder ready to accept requests", map[string]interface{}{
		"request_subject":   cfg.RequestSubject,
		"discovery_subject": cfg.DiscoverySubject,
	})

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}

	slog.Info("Shutting down responder")
	cancel()
	natsService.Close()
}

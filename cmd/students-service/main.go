// main is the entry point of the students service: students, their
// courses and the course type catalogue, stored in SQLite.
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-service --config=config/students.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/students.yaml go run ./cmd/students-service
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/university-api/internal/config"
	"github.com/aanand-mishra/university-api/internal/http/handlers/health"
	"github.com/aanand-mishra/university-api/internal/http/server"
	"github.com/aanand-mishra/university-api/internal/logger"
	"github.com/aanand-mishra/university-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := logger.Setup(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting students-service", slog.String("env", cfg.Env))

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// NewStudents opens the SQLite file, creates the tables and seeds the
	// course types.
	if cfg.StoragePath == "" {
		log.Error("storage_path is required")
		os.Exit(1)
	}
	store, err := sqlite.NewStudents(cfg.StoragePath)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1) // non-zero exit code signals failure to the OS / CI system
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("path", cfg.StoragePath))

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	checker := health.NewChecker("students", 2*time.Second)
	checker.AddCheck("sqlite", store.Ping)

	router := server.StudentsRoutes(store, checker)
	srv := server.New(cfg.HTTPServer, server.Wrap(router, log))

	// ── 5. Serve until SIGINT / SIGTERM ───────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, srv, cfg.HTTPServer, log); err != nil {
		log.Error("server encountered an error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

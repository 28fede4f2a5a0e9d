// main is the entry point of the exams service: scheduled exams and course
// enrollments, stored in SQLite.
//
//	go run ./cmd/exams-service --config=config/exams.yaml
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
	cfg := config.MustLoad()

	log := logger.Setup(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting exams-service", slog.String("env", cfg.Env))

	if cfg.StoragePath == "" {
		log.Error("storage_path is required")
		os.Exit(1)
	}
	store, err := sqlite.NewExams(cfg.StoragePath)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("path", cfg.StoragePath))

	checker := health.NewChecker("exams", 2*time.Second)
	checker.AddCheck("sqlite", store.Ping)

	router := server.ExamsRoutes(store, checker)
	srv := server.New(cfg.HTTPServer, server.Wrap(router, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, srv, cfg.HTTPServer, log); err != nil {
		log.Error("server encountered an error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

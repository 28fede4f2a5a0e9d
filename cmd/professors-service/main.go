// main is the entry point of the professors service. Professors live in
// SQLite; when redis.address is configured, reads go through a Redis cache.
//
//	go run ./cmd/professors-service --config=config/professors.yaml
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/university-api/internal/config"
	"github.com/aanand-mishra/university-api/internal/http/handlers/health"
	"github.com/aanand-mishra/university-api/internal/http/server"
	"github.com/aanand-mishra/university-api/internal/logger"
	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/storage/redis"
	"github.com/aanand-mishra/university-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := logger.Setup(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting professors-service", slog.String("env", cfg.Env))

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	if cfg.StoragePath == "" {
		log.Error("storage_path is required")
		os.Exit(1)
	}
	db, err := sqlite.NewProfessors(cfg.StoragePath)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	checker := health.NewChecker("professors", 2*time.Second)
	checker.AddCheck("sqlite", db.Ping)

	// ── 4. Optional Redis Cache ───────────────────────────────────────────
	// The cache is a decorator: handlers see the same ProfessorStorage
	// interface whether or not it is enabled.
	var store storage.ProfessorStorage = db
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		cached := redis.NewProfessors(db, client, cfg.Redis.TTL, log)
		checker.AddSoftCheck("redis", cached.Ping)
		store = cached

		log.Info("professors cache enabled",
			slog.String("address", cfg.Redis.Addr),
			slog.Duration("ttl", cfg.Redis.TTL))
	}

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	router := server.ProfessorsRoutes(store, checker)
	srv := server.New(cfg.HTTPServer, server.Wrap(router, log))

	// ── 6. Serve until SIGINT / SIGTERM ───────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, srv, cfg.HTTPServer, log); err != nil {
		log.Error("server encountered an error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

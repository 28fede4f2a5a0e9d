// main is the entry point of the gateway.
//
// The gateway owns no data. For GET /api/gateway/students/{studentId} it
// asks the students service for the student and its courses, then asks the
// exams service for the exams of those courses through a circuit breaker,
// and joins the two.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Build the circuit breaker registry
//  4. Build the upstream clients and the orchestrator
//  5. Register all HTTP routes
//  6. Serve until an OS signal (Ctrl+C / kill) arrives, then shut down
//     gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/gateway --config=config/gateway.yaml
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/university-api/internal/breaker"
	"github.com/aanand-mishra/university-api/internal/config"
	"github.com/aanand-mishra/university-api/internal/gateway"
	"github.com/aanand-mishra/university-api/internal/http/handlers/health"
	"github.com/aanand-mishra/university-api/internal/http/server"
	"github.com/aanand-mishra/university-api/internal/logger"
	"github.com/aanand-mishra/university-api/internal/upstream"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := logger.Setup(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting gateway",
		slog.String("env", cfg.Env),
		slog.String("students_url", cfg.Upstreams.StudentsURL),
		slog.String("exams_url", cfg.Upstreams.ExamsURL),
	)

	// ── 3. Circuit Breakers ───────────────────────────────────────────────
	// Every breaker in the registry shares these settings; the registry
	// only replaces the name.
	cb := cfg.CircuitBreaker
	breakers := breaker.NewRegistry(breaker.Settings{
		FailureRateThreshold: cb.FailureRateThreshold,
		MinimumCalls:         cb.MinimumCalls,
		Window:               cb.Window,
		Buckets:              cb.Buckets,
		OpenTimeout:          cb.OpenTimeout,
		Clock:                breaker.SystemClock,
		OnStateChange: func(name string, from, to breaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	// ── 4. Upstream Clients ───────────────────────────────────────────────
	// One *http.Client (and so one connection pool) for both upstreams.
	httpClient := upstream.NewHTTPClient(cfg.Upstreams.Timeout)
	orchestrator := gateway.NewOrchestrator(
		upstream.NewStudentClient(cfg.Upstreams.StudentsURL, httpClient),
		upstream.NewExamClient(cfg.Upstreams.ExamsURL, httpClient),
		breakers,
		log,
	)

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	checker := health.NewChecker("gateway", 2*time.Second)
	checker.AddSoftCheck("breakers", health.Breakers(breakers))

	router := server.GatewayRoutes(orchestrator, breakers, checker)
	srv := server.New(cfg.HTTPServer, server.Wrap(router, log))

	// ── 6. Serve until SIGINT / SIGTERM ───────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, srv, cfg.HTTPServer, log); err != nil {
		log.Error("server encountered an error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

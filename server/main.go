package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/pipeline/backend"
	"github.com/meikuraledutech/pipeline/postgres"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8000"
	}

	cfg := backend.Config{Logger: log}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The analysis log is optional: without DATABASE_URL the service only
	// answers parse requests.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Error("connect", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		store := postgres.New(pool)
		if err := store.CreateSchema(ctx); err != nil {
			log.Error("schema", "error", err)
			os.Exit(1)
		}
		cfg.Recorder = store
	}

	app := backend.New(cfg)

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	log.Info("listening", "addr", addr, "analysis_log", cfg.Recorder != nil)
	if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Error("listen", "error", err)
		os.Exit(1)
	}
}

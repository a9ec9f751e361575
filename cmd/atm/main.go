package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"atm-simulator/internal/cli"
	"atm-simulator/internal/config"
	"atm-simulator/internal/services"
	"atm-simulator/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	st := store.NewJSONStore(cfg.Storage.DataFile, logger)
	if err := st.Load(); err != nil {
		// Load fails soft; an error here means even the seeded sample
		// accounts could not be persisted. Continue with in-memory state.
		logger.Warn("starting without durable state", "error", err)
	}

	session := services.NewSessionService(st, services.NewAuditLogger(logger), logger, services.SessionOptions{
		RecentTransactionCount: cfg.Session.RecentTransactionCount,
		FailedLoginInterval:    cfg.Session.FailedLoginInterval,
		FailedLoginBurst:       cfg.Session.FailedLoginBurst,
	})

	// An interrupt cancels the context; the menu loop sees it, logs out, and
	// persists on its own goroutine, so no save races an in-flight operation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.NewMenu(session, os.Stdin, os.Stdout).Run(ctx)
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

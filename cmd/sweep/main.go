// Command sweep fails recordings that have been pending or processing for
// longer than the configured staleness window. It is intended to be invoked
// by an external cron job when the server's own sweep loop is not enough.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/voicedoc-backend/internal/app"
	"github.com/heartmarshall/voicedoc-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	core, err := app.OpenCore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open backing services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer core.Close()

	swept, err := core.Sweeper.Sweep(ctx)
	if err != nil {
		logger.Error("sweep failed",
			slog.String("error", err.Error()),
			slog.Duration("stale_after", cfg.Pipeline.StaleAfter),
		)
		core.Close()
		os.Exit(1)
	}

	logger.Info("sweep completed",
		slog.Int("failed", len(swept)),
		slog.Duration("stale_after", cfg.Pipeline.StaleAfter),
	)
}

package app

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/voicedoc-backend/internal/config"
)

// Run is the server entry point. It loads configuration, connects to the
// backing services and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("storage", cfg.Storage.Backend),
		slog.Int("workers", cfg.Pipeline.Workers),
	)

	core, err := OpenCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer core.Close()

	srv, err := NewServer(cfg, core)
	if err != nil {
		return err
	}

	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

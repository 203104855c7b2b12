// Package commands implements the voicedocctl subcommands.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/voicedoc-backend/internal/app"
	"github.com/heartmarshall/voicedoc-backend/internal/config"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "voicedocctl",
		Short:         "Operator tool for the voice documentation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.BuildVersion(),
	}
	root.PersistentFlags().String("config", "", "config file path (default: $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		newMigrateCmd(),
		newVerifyChainCmd(),
		newSweepCmd(),
		newRequeueCmd(),
	)
	return root
}

// Execute runs the command tree until it finishes or the process receives
// SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

// withCore opens the backing services for the duration of fn.
func withCore(cmd *cobra.Command, fn func(ctx context.Context, core *app.Core) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	core, err := app.OpenCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer core.Close()
	return fn(ctx, core)
}

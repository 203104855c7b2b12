package commands

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres"
	"github.com/heartmarshall/voicedoc-backend/migrations"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return postgres.Migrate(cmd.Context(), logger, cfg.Database.DSN, migrations.FS)
		},
	}
}

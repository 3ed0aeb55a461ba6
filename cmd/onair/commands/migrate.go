package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/onair/pkg/logger"
	"github.com/dmitrymomot/onair/pkg/store"
)

var errNoDatabase = errors.New("DATABASE_CONN_URL is not set")

func (c *CLI) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the translations table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config(cmd)
			if err != nil {
				return err
			}
			if cfg.Database.ConnectionString == "" {
				return errNoDatabase
			}

			log, flush := logger.New(cfg.Log)
			defer flush()

			ctx := cmd.Context()
			pool, err := store.Connect(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			return store.Migrate(ctx, pool, cfg.Database.MigrationsTable, log)
		},
	}
}

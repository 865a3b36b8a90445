package main

import (
	"fmt"

	"reservation-engine/internal/infra/db"
	"reservation-engine/internal/pkg/config"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema to the Postgres store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.StoreDriverPostgres {
				fmt.Fprintf(cmd.OutOrStdout(), "store driver %q applies its schema on open, nothing to do\n", cfg.Store.Driver)
				return nil
			}

			pool, cleanup, err := db.Connect(cfg.DB)
			if err != nil {
				return err
			}
			defer cleanup()

			return db.Migrate(cmd.Context(), pool)
		},
	}
}

package cli

import (
	"fmt"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/config"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL instrument schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Backend != config.BackendPostgres {
				return fmt.Errorf("migrate: store.backend is %q, want %q", cfg.Store.Backend, config.BackendPostgres)
			}

			db, err := postgres.Open(cmd.Context(), cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.NewInstrumentStore(db).Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema acuotaz is up to date")
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Binusha25Liyanage/MoneyMate/internal/config"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the embedded schema migrations, which create the transactions and
goals tables and their indexes, to the sqlite or postgres store selected by
DATA_BACKEND.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DataBackend == config.BackendMemory {
				return fmt.Errorf("the memory backend has no schema to migrate")
			}

			res, err := openBackend(cmd.Context(), true)
			if err != nil {
				return err
			}
			closeBackend(res)

			logger.Info("Migrations applied",
				"backend", cfg.DataBackend,
				applog.FieldOperation, applog.OpMigrate)
			return nil
		},
	}
}

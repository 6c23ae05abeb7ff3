package cmd

import (
	"fmt"
	"stock-app/config"
	"stock-app/database"
	"stock-app/migration"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			if err := migration.Migrate(rt.db); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			rt.log.Info("migration finished")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load departments, categories and the barcode catalog",
		Long:  `With --demo, also adds one user per role and sample stock. Existing rows are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			if err := migration.Migrate(rt.db); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			if err := database.RunSeeders(rt.db, config.TenantID, demo); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			rt.log.Info("seed finished")
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "also seed demo users and stock")
	return cmd
}

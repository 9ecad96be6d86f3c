package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending PostgreSQL migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Store.Driver != "postgres" {
			return fmt.Errorf("migrate needs store.driver=postgres, got %s", cfg.Store.Driver)
		}

		pool, err := postgres.Connect(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := postgres.Migrate(cmd.Context(), pool)
		if err != nil {
			return err
		}
		log.Printf("[store] %d migration(s) applied", applied)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

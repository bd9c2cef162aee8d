package cmd

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/config"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations (database/migrations)",
	RunE:  runMigrateUp,
}

var migrateCreateCmd = &cobra.Command{
	Use:   "migrate-create [name]",
	Short: "Create an empty up/down migration pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || args[0] == "" {
			log.Fatal("migration name required")
		}
		return database.CreateMigration(args[0])
	},
}

func init() {
	rootCmd.AddCommand(migrateCreateCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.MigrateUp(cfg.DatabaseURL())
}

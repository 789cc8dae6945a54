package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardbill/cardbill/adapters/sqlite"
	"github.com/cardbill/cardbill/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long: `Apply pending database migrations and exit.

The serve command migrates automatically on startup; this command is for
running migrations ahead of a deploy or inspecting a fresh database.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fmt.Printf("Database migrated: %s\n", cfg.Database.DSN)
	return nil
}

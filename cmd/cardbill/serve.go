package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardbill/cardbill/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the billing API server",
	Long: `Start the cardbill API server.

The server will:
  - Load configuration from cardbill.yaml (or --config)
  - Or load configuration from CARDBILL_* environment variables
  - Connect to the database and apply pending migrations
  - Serve the REST API, health check and Prometheus metrics

Environment variables (for Docker deployments):
  CARDBILL_DATABASE_DSN     - Database path (default: cardbill.db)
  CARDBILL_SERVER_PORT      - Server port (default: 8080)
  CARDBILL_API_TOKEN        - Static bearer token for /api/v1
  CARDBILL_RENDER_CHROME    - Headless Chrome binary path
  CARDBILL_LOG_LEVEL        - Log level: debug, info, warn, error

Examples:
  cardbill serve
  cardbill serve --config /etc/cardbill/config.yaml

  # Docker (env vars only):
  CARDBILL_DATABASE_DSN=/data/cardbill.db cardbill serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(cfgFile)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}

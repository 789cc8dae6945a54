package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cardbill",
	Short: "Card network fee billing and invoicing service",
	Long: `Cardbill is a self-hosted billing administration service for card
network fees. It manages issuers, clients, products, fee schedules and
price mappings, resolves which fees apply to a billing period, computes
interchange revenue share with GST, and generates tax invoices with PDF
rendering.

Quick start:
  cardbill migrate   # Create or upgrade the database schema
  cardbill serve     # Start the API server

Management:
  cardbill validate  # Validate configuration
  cardbill version   # Print version information`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "cardbill.yaml", "config file path")
}

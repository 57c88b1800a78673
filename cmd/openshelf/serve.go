package main

import (
	"fmt"
	"os"

	"github.com/openshelf/openshelf/bootstrap"
	"github.com/openshelf/openshelf/config"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bookstore API server",
	Long: `Start the OpenShelf API server.

The server will:
  - Load configuration from openshelf.yaml (or --config)
  - Or load configuration from OPENSHELF_* environment variables
  - Open the database and apply pending migrations
  - Serve the REST API with authentication and request validation

Environment variables (for Docker deployments):
  OPENSHELF_DATABASE_DSN     - Database path (default: openshelf.db)
  OPENSHELF_SERVER_PORT      - Server port (default: 8080)
  OPENSHELF_JWT_SECRET       - Token signing secret
  OPENSHELF_EMAIL_MODE       - Email mode: none or smtp
  OPENSHELF_STORAGE_MODE     - Storage mode: memory or s3
  OPENSHELF_LOG_LEVEL        - Log level: debug, info, warn, error
  OPENSHELF_ADMIN_EMAIL      - Admin email for first-run bootstrap

Examples:
  openshelf serve
  openshelf serve --config /etc/openshelf/config.yaml
  openshelf serve --hot-reload=false

  # Docker (env vars only):
  OPENSHELF_JWT_SECRET=change-me openshelf serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	hasEnvConfig := config.HasEnvConfig()

	// No configuration at all
	if !hasConfigFile && !hasEnvConfig {
		fmt.Println("No configuration found.")
		fmt.Println()
		fmt.Printf("Option 1: Create %s\n", cfgFile)
		fmt.Println("Option 2: Set OPENSHELF_* environment variables")
		fmt.Println()
		fmt.Println("Example (env vars):")
		fmt.Println("  OPENSHELF_JWT_SECRET=change-me openshelf serve")
		return nil
	}

	// Create application
	var app *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with a config file
		app, err = bootstrap.NewWithHotReload(cfgFile)
	} else {
		cfg, loadErr := config.LoadWithFallback(cfgFile)
		if loadErr != nil {
			return fmt.Errorf("error loading config: %w", loadErr)
		}

		if !hasConfigFile {
			fmt.Println("Running with environment variables (no config file)")
		}

		app, err = bootstrap.New(cfg)
	}

	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}

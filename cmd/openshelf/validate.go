package main

import (
	"fmt"
	"os"

	"github.com/openshelf/openshelf/adapters/sqlite"
	"github.com/openshelf/openshelf/config"
	"github.com/spf13/cobra"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the OpenShelf configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Database is writable (optional)

Examples:
  openshelf validate
  openshelf validate --config /etc/openshelf/config.yaml`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	// Check file exists
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	// Load and validate config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	if cfg.Auth.JWTSecret == "" {
		fmt.Printf("  %s JWT secret set\n", crossMark)
		fmt.Println("    Tokens cannot be signed without auth.jwt_secret")
	} else {
		fmt.Printf("  %s JWT secret set\n", checkMark)
	}

	if validateCheckDatabase {
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			return fmt.Errorf("database error: %w", err)
		}
		db.Close()
		fmt.Printf("  %s Database writable\n", checkMark)
	}

	fmt.Println()
	fmt.Println("Configuration valid")
	fmt.Printf("  Server:  %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  DB:      %s\n", cfg.Database.DSN)
	fmt.Printf("  Email:   %s\n", cfg.Email.Mode)
	fmt.Printf("  Storage: %s\n", cfg.Storage.Mode)
	return nil
}

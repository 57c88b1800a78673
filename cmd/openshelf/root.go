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
	Use:   "openshelf",
	Short: "Digital bookstore backend with catalog, purchases, and reviews",
	Long: `OpenShelf is a self-hosted digital bookstore.

It serves a REST API for user accounts, a book catalog with
categories, purchases, personal libraries, and reviews.

Quick start:
  openshelf serve     # Start the API server

Management:
  openshelf admin     # Create the first administrator account
  openshelf validate  # Validate configuration
  openshelf version   # Print version information`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "openshelf.yaml", "config file path")
}

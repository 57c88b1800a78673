package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/openshelf/openshelf/bootstrap"
	"github.com/openshelf/openshelf/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
	Long: `Manage OpenShelf administrator accounts.

The first super admin has to be created from the command line (or via
the OPENSHELF_ADMIN_EMAIL environment variable on first start). After
that, administrators are managed through the API.

Examples:
  openshelf admin create --email=admin@example.com
  openshelf admin list`,
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List administrator accounts",
	RunE:  runAdminList,
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a super admin account",
	Long: `Create a super admin account.

If --password is not provided, you will be prompted to enter it securely.

Examples:
  openshelf admin create --email=admin@example.com
  openshelf admin create --email=admin@example.com --password=secret --name="Jo Admin"`,
	RunE: runAdminCreate,
}

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminCreateCmd)

	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address (required)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (prompted if not set)")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "Administrator", "admin display name")
	adminCreateCmd.MarkFlagRequired("email")
}

func openApp() (*bootstrap.App, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	cfg.Logging.Level = "error"
	return bootstrap.New(cfg)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	password := adminPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Shutdown()

	admin, err := app.EnsureAdmin(context.Background(), adminEmail, password, adminName)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Super admin ready: %s (%s)\n", admin.Email, admin.ID)
	return nil
}

func runAdminList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Shutdown()

	users, err := app.Users.List(context.Background(), 1000, 0)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tACTIVE")
	for _, u := range users {
		if !u.Role.IsAdmin() {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", u.Email, u.FullName, u.Role, u.IsActive)
	}
	return w.Flush()
}

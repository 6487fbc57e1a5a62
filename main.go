package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rm-hull/inventory-console/cmd"
	"github.com/rm-hull/inventory-console/internal/inventory"
)

func main() {
	var opts cmd.Options
	var apiPort, mockPort int
	var debug bool
	var username, password string
	var query inventory.Query

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "inventory-console",
		Long:          "Inventory administration console: CLI, console backend and mock API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.SessionDB, "session-db", "", "Path to the session database (default $SESSION_DB or data/session.db)")
	rootCmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "Base URL of the inventory API (default $API_BASE_URL)")

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--port <port>] [--debug]",
		Short: "Start the console backend HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.ApiServer(opts, apiPort, debug)
		},
	}
	apiServerCmd.Flags().IntVar(&apiPort, "port", 8080, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	mockApiCmd := &cobra.Command{
		Use:   "mock-api [--port <port>]",
		Short: "Start an in-memory mock of the inventory API",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.MockApi(opts, mockPort)
		},
	}
	mockApiCmd.Flags().IntVar(&mockPort, "port", 8081, "Port to run HTTP server on")

	loginCmd := &cobra.Command{
		Use:   "login --username <name> [--password <password>]",
		Short: "Log in and save the session",
		RunE: func(_ *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("INVENTORY_PASSWORD")
			}
			return cmd.Login(ctx, opts, username, password)
		},
	}
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (default $INVENTORY_PASSWORD)")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Logout(opts)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is saved",
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Status(c.OutOrStdout(), opts)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list <kind> [--search <text>] [--sort <field>] [--desc] [--page <n>] [--page-size <n>]",
		Short: "List products, categories, vendors, warehouses or units",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.List(ctx, c.OutOrStdout(), opts, args[0], query)
		},
	}
	listCmd.Flags().StringVarP(&query.Search, "search", "s", "", "Only show records containing this text")
	listCmd.Flags().StringVar(&query.SortBy, "sort", "", "Field to sort by")
	listCmd.Flags().BoolVar(&query.Desc, "desc", false, "Sort in descending order")
	listCmd.Flags().IntVar(&query.Page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&query.PageSize, "page-size", inventory.DefaultPageSize, "Records per page")

	getCmd := &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Show a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Get(ctx, c.OutOrStdout(), opts, args[0], args[1])
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Delete(ctx, opts, args[0], args[1])
		},
	}

	rootCmd.AddCommand(apiServerCmd, mockApiCmd, loginCmd, logoutCmd, statusCmd, listCmd, getCmd, deleteCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Printf("%v", err)
		stop()
		os.Exit(1)
	}
}

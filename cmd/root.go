package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/bookkeeper/internal/client"
	"github.com/simonvc/bookkeeper/internal/config"
)

var (
	flagConfig  string
	flagServer  string
	flagDB      string
	flagCompany string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bookkeeper",
	Short: "Multi-company double-entry bookkeeping ledger",
	Long: "A double-entry bookkeeping ledger backed by SQLite. Journals are validated and\n" +
		"posted into fiscal periods, and the general ledger, trial balance, profit and\n" +
		"loss, and balance sheet are derived from posted journals.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("server") {
			loaded.Client.URL = flagServer
		}
		if cmd.Flags().Changed("db") {
			loaded.Database.Path = flagDB
		}
		if cmd.Flags().Changed("company") {
			loaded.Client.Company = flagCompany
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./bookkeeper.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "bookkeeper.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagCompany, "company", "", "Company id or code")
}

func Execute() error {
	return rootCmd.Execute()
}

func apiClient() *client.Client {
	return client.New(cfg.Client.URL)
}

// company returns the company selected by --company or client.company.
func company() (string, error) {
	if cfg.Client.Company == "" {
		return "", fmt.Errorf("no company selected: pass --company or set client.company")
	}
	return cfg.Client.Company, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonvc/bookkeeper/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with the current settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFile
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("server.addr:    %s\n", cfg.Server.Addr)
		fmt.Printf("server.mode:    %s\n", cfg.Server.Mode)
		fmt.Printf("database.path:  %s\n", cfg.Database.Path)
		fmt.Printf("log.level:      %s\n", cfg.Log.Level)
		fmt.Printf("client.url:     %s\n", cfg.Client.URL)
		fmt.Printf("client.company: %s\n", cfg.Client.Company)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

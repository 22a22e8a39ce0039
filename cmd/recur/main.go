package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fentz26/recur/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "recur",
	Short: "recur - a personal recurring-task tracker",
	Long: `recur keeps a list of one-shot and recurring tasks. A recurring task is
done for a cooldown period after you complete it and then comes due again;
the list is always sorted so the most overdue work is on top.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr    string
	configPath string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "", "API server address (default: http://<listen> from the config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.recur/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		path, err := config.Path()
		if err != nil {
			return err
		}
		configPath = path
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	if apiAddr == "" {
		apiAddr = "http://" + cfg.Listen
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

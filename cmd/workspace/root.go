package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Company workspace backend",
	Long: `Backend for the company workspace: member invitations, per-user settings,
the company directory and task categories.

Configuration comes from the environment, .env files and an optional workspace.yaml.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.GetCached()
		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger.Configure(level, cfg.IsProduction())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupDBCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func databaseConfig(cfg *config.Config) database.DatabaseConfig {
	return database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	}
}

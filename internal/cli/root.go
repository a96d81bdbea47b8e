// Package cli implements the landing command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dreamdigital/landing/internal/config"
)

// Global flags shared by every command
var (
	configPath     string
	storageBackend string
	databaseURL    string
	dataDir        string
)

var appVersion = "dev"

// RootCmd is the landing command
var RootCmd = &cobra.Command{
	Use:   "landing",
	Short: "DREAM DIGITAL landing page, lead ledger and analytics",
	Long: `landing serves the DREAM DIGITAL landing page, records contact requests
in the lead ledger and keeps the site analytics.

Run "landing serve" to start the web server or "landing console" for the
terminal dashboards.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			config.SetConfigFile(configPath)
		}
	},
}

// Execute runs the root command
func Execute(version string) error {
	if version != "" {
		appVersion = version
	}
	RootCmd.Version = appVersion
	return RootCmd.Execute()
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ./landing.toml or $XDG_CONFIG_HOME/landing/landing.toml)")
	flags.StringVar(&storageBackend, "storage", "", "storage backend: memory, sqlite or postgres")
	flags.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL")
	flags.StringVar(&dataDir, "data-dir", "", "directory for the sqlite database and GeoIP data")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(consoleCmd)
	RootCmd.AddCommand(leadsCmd)
	RootCmd.AddCommand(analyticsCmd)
	RootCmd.AddCommand(adminCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(upgradeCmd)
	RootCmd.AddCommand(versionCmd)
}

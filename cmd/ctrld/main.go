// Package main implements the ctrld daemon and its local maintenance commands.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the YAML config file location; empty means the default
	// ~/.config/ctrld/config.yaml.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ctrld",
	Short: "Slack bot for managing the project registry",
	Long: `ctrld maps projects to Slack channels, GitHub repositories, Jira keys,
and project owners. It serves /ctrl slash commands over Slack Socket Mode
and persists the registry as a TOML manifest on disk.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/ctrld/config.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(projectsCmd)
}

package main

import (
	"strreg/internal/config"
	"strreg/internal/version"

	"github.com/spf13/cobra"
)

var (
	// configPath is the --config flag value
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "strreg",
	Short: "strreg - string registry service",
	Long: `strreg stores strings submitted over HTTP, computes derived properties
for each (length, palindrome check, unique characters, word count, SHA-256,
character frequencies) and supports lookup, filtering and deletion.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("strreg version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./strreg.toml or ./.strreg/strreg.toml)")
}

// loadConfig loads configuration honouring the --config flag.
func loadConfig() (*config.Config, error) {
	return config.LoadConfig(configPath)
}

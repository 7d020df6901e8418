/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/bytestream/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file and data directory",
	Long: `Create a bytestream configuration with a freshly generated API key.

This command will:
- Write the configuration file (0600)
- Create the data directory
- Print the API key for the HTTP server

Examples:
  bytestream init
  bytestream init --config ./bytestream.yaml --data-dir ./data --order big`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsFrom(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		cfg, created, err := initializeConfig(s.configPath, s.config, force)
		if err != nil {
			return err
		}
		if !created {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", s.configPath)
			return nil
		}

		s.logger.Debug("configuration written", "path", s.configPath)
		cmd.Printf("Configuration created at %s\n", s.configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("Byte order: %s\n", cfg.Codec.ByteOrder)
		cmd.Printf("API key: %s\n", cfg.Server.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}

// initializeConfig bootstraps a config at configPath using the data dir and
// byte order already resolved in base. It reports false without touching
// anything when a config exists and force is not set.
func initializeConfig(configPath string, base *config.Config, force bool) (*config.Config, bool, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, false, nil
	}

	cfg, err := config.BootstrapConfig(configPath, base.DataDir)
	if err != nil {
		return nil, false, err
	}

	if cfg.Codec.ByteOrder != base.Codec.ByteOrder {
		cfg.Codec.ByteOrder = base.Codec.ByteOrder
		if err := config.SaveConfig(cfg, configPath); err != nil {
			return nil, false, err
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, false, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, true, nil
}

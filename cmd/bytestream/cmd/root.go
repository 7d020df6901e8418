/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ssargent/bytestream/pkg/codec"
	"github.com/ssargent/bytestream/pkg/config"
	"github.com/ssargent/bytestream/pkg/di"
)

var container *di.Container

// SetContainer injects the dependency container used by serve
func SetContainer(c *di.Container) {
	container = c
}

type contextKey string

const settingsKey contextKey = "settings"

// settings is the resolved configuration shared by every subcommand
type settings struct {
	config     *config.Config
	configPath string
	logger     *slog.Logger
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bytestream",
	Short: "bytestream - typed binary encoding for messages",
	Long: `bytestream encodes and decodes messages in a compact, order-aware
binary format, keeps them in an append-only log and serves both over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), settingsKey, s))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	addSettingsFlags(rootCmd.PersistentFlags())
}

func addSettingsFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to config file (default: OS-specific location)")
	fs.StringP("data-dir", "d", "", "Data directory (overrides config)")
	fs.StringP("order", "o", "", "Byte order: big or little (overrides config)")
	fs.String("log-level", "", "Logging level: debug, info, warn, error (overrides config)")
}

// loadSettings reads the config file when present and applies flag overrides
func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("order") {
		raw, _ := flags.GetString("order")
		order, err := codec.ParseByteOrder(raw)
		if err != nil {
			return nil, err
		}
		cfg.Codec.ByteOrder = order
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &settings{
		config:     cfg,
		configPath: configPath,
		logger:     cfg.Logging.NewLogger(cmd.ErrOrStderr()),
	}, nil
}

// settingsFrom returns the settings stored by the root command
func settingsFrom(cmd *cobra.Command) (*settings, error) {
	s, ok := cmd.Context().Value(settingsKey).(*settings)
	if !ok {
		return nil, fmt.Errorf("settings not found in context")
	}
	return s, nil
}

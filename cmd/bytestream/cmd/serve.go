/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/bytestream/pkg/api"
	"github.com/ssargent/bytestream/pkg/config"
	"github.com/ssargent/bytestream/pkg/protocol"
	"github.com/ssargent/bytestream/pkg/storage"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the bytestream REST API server.

The server exposes the codec (encode/decode), the append-only message log and
the keyed document table under /api/v1, plus Prometheus metrics at /metrics.
Requests to /api/v1 must carry the API key in the X-API-Key header.

Examples:
  bytestream serve
  bytestream serve --api-key=mysecretkey --port=8080 --order big`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsFrom(cmd)
		if err != nil {
			return err
		}
		applyServeFlags(cmd, s.config)

		if s.config.Server.APIKey == "" || s.config.Server.APIKey == "auto" {
			return fmt.Errorf("an API key is required: pass --api-key or run 'bytestream init' first")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServer(ctx, s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind to (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("bind") {
		cfg.Server.Bind, _ = flags.GetString("bind")
	}
	if flags.Changed("api-key") {
		cfg.Server.APIKey, _ = flags.GetString("api-key")
	}
}

// runServer opens the stores and blocks in the container's server starter
// until ctx is cancelled.
func runServer(ctx context.Context, s *settings) error {
	cfg := s.config
	if container == nil {
		return fmt.Errorf("dependency container not initialized")
	}

	reg := container.GetRegistry()
	metrics := api.NewMetrics(reg)

	messages, err := openMessageLog(cfg, metrics)
	if err != nil {
		return err
	}
	defer messages.Close()

	documents, err := storage.NewTable(cfg.DocumentsPath(), protocol.MessageCodec, cfg.Codec.ByteOrder)
	if err != nil {
		return fmt.Errorf("failed to open document table: %w", err)
	}
	defer documents.Close()

	server, err := api.NewServer(messages, documents, api.ServerConfig{
		Port:            cfg.Server.Port,
		Bind:            cfg.Server.Bind,
		APIKey:          cfg.Server.APIKey,
		Order:           cfg.Codec.ByteOrder,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, metrics, s.logger)
	if err != nil {
		return err
	}

	s.logger.Info("starting server",
		"bind", cfg.Server.Bind,
		"port", cfg.Server.Port,
		"order", cfg.Codec.ByteOrder.String(),
		"data_dir", cfg.DataDir)

	starter := container.GetServerFactory().CreateServerStarter()
	if err := starter.StartServer(ctx, server, reg); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

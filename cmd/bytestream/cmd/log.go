/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/bytestream/pkg/config"
	"github.com/ssargent/bytestream/pkg/protocol"
	"github.com/ssargent/bytestream/pkg/store"
)

// logCmd groups the message log commands
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Work with the append-only message log",
}

var logAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append a message to the log",
	Long: `Build a message from flags and append it to the message log in the data
directory, using the configured byte order.

Example:
  bytestream log append --seq 1 --body hello --tag greeting`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsFrom(cmd)
		if err != nil {
			return err
		}

		msg, err := messageFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		offset, err := appendMessage(s.config, msg)
		if err != nil {
			return err
		}
		s.logger.Debug("message appended", "path", s.config.LogPath(), "offset", offset)
		cmd.Printf("Appended %s at offset %d\n", msg.ID, offset)
		return nil
	},
}

var logDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every message in the log as JSON lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsFrom(cmd)
		if err != nil {
			return err
		}
		return dumpLog(s.config, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logAppendCmd)
	logCmd.AddCommand(logDumpCmd)
	addMessageFlags(logAppendCmd.Flags())
}

func openMessageLog(cfg *config.Config, observer store.Observer) (*store.Log[protocol.Message], error) {
	l, err := store.OpenLog(protocol.MessageCodec, store.LogConfig{
		FilePath:      cfg.LogPath(),
		Order:         cfg.Codec.ByteOrder,
		FsyncInterval: cfg.Log.FsyncInterval,
		BufferSize:    cfg.Log.BufferSize,
		Observer:      observer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open message log: %w", err)
	}
	return l, nil
}

// appendMessage appends msg to the configured log and returns its offset
func appendMessage(cfg *config.Config, msg protocol.Message) (int64, error) {
	l, err := openMessageLog(cfg, nil)
	if err != nil {
		return 0, err
	}
	defer l.Close()

	offset, err := l.Append(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to append message: %w", err)
	}
	return offset, nil
}

type dumpLine struct {
	Offset  int64            `json:"offset"`
	Message protocol.Message `json:"message"`
}

// dumpLog writes one JSON object per message in log order
func dumpLog(cfg *config.Config, w io.Writer) error {
	if !store.Exists(cfg.LogPath()) {
		return fmt.Errorf("no message log at %s", cfg.LogPath())
	}

	l, err := openMessageLog(cfg, nil)
	if err != nil {
		return err
	}
	defer l.Close()

	enc := json.NewEncoder(w)
	return l.Scan(func(offset int64, m protocol.Message) error {
		return enc.Encode(dumpLine{Offset: offset, Message: m})
	})
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/ssargent/bytestream/pkg/codec"
	"github.com/ssargent/bytestream/pkg/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a message and print its wire bytes as hex",
	Long: `Build a message from flags, encode it in the configured byte order and
print the result as hex.

Examples:
  bytestream encode --seq 31 --body hello
  bytestream encode --order big --tag a --tag b --header trace=abc --priority 3`,
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

		encoded, err := encodeMessage(msg, s.config.Codec.ByteOrder)
		if err != nil {
			return err
		}
		s.logger.Debug("message encoded", "id", msg.ID.String(), "order", s.config.Codec.ByteOrder.String(), "bytes", len(encoded)/2)
		cmd.Println(encoded)
		return nil
	},
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode hex wire bytes into a message",
	Long: `Decode a message previously produced by encode and print it as JSON.

Example:
  bytestream decode --order big 2f1c...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settingsFrom(cmd)
		if err != nil {
			return err
		}

		msg, err := decodeMessage(args[0], s.config.Codec.ByteOrder)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	addMessageFlags(encodeCmd.Flags())
}

// encodeMessage returns the hex wire form of msg
func encodeMessage(msg protocol.Message, order codec.ByteOrder) (string, error) {
	data, err := codec.Marshal(protocol.MessageCodec, order, msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	return hex.EncodeToString(data), nil
}

// decodeMessage parses the hex wire form of a message
func decodeMessage(hexStr string, order codec.ByteOrder) (protocol.Message, error) {
	data, err := hex.DecodeString(strings.TrimSpace(hexStr))
	if err != nil {
		return protocol.Message{}, fmt.Errorf("invalid hex: %w", err)
	}
	msg, err := codec.Unmarshal(protocol.MessageCodec, order, data)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("failed to decode message: %w", err)
	}
	return msg, nil
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/pflag"

	"github.com/ssargent/bytestream/pkg/protocol"
)

// addMessageFlags registers the flags that describe a message
func addMessageFlags(fs *pflag.FlagSet) {
	fs.String("id", "", "Message ID as a KSUID (generated when empty)")
	fs.Uint32("seq", 0, "Sequence number")
	fs.Uint16("flags", 0, "Flag bits")
	fs.String("sender", "bytestream", "Sender name")
	fs.Uint16("sender-port", 0, "Sender port")
	fs.StringSlice("tag", nil, "Tag to attach (repeatable)")
	fs.StringToString("header", nil, "Header as key=value (repeatable)")
	fs.Int("priority", -1, "Priority 0-255 (omitted when negative)")
	fs.String("body", "", "Message body as text")
	fs.String("body-hex", "", "Message body as hex (overrides --body)")
	fs.Bool("acked", false, "Mark the message as acknowledged")
}

// messageFromFlags builds a message from flags registered by addMessageFlags
func messageFromFlags(fs *pflag.FlagSet) (protocol.Message, error) {
	var msg protocol.Message

	rawID, _ := fs.GetString("id")
	if rawID == "" {
		msg.ID = ksuid.New()
	} else {
		id, err := ksuid.Parse(rawID)
		if err != nil {
			return msg, fmt.Errorf("invalid --id: %w", err)
		}
		msg.ID = id
	}

	msg.Sequence, _ = fs.GetUint32("seq")
	msg.Flags, _ = fs.GetUint16("flags")
	msg.Sender.Name, _ = fs.GetString("sender")
	msg.Sender.Port, _ = fs.GetUint16("sender-port")

	tags, _ := fs.GetStringSlice("tag")
	msg.Tags = append([]string{}, tags...)

	headers, _ := fs.GetStringToString("header")
	msg.Headers = make(map[string]string, len(headers))
	for k, v := range headers {
		msg.Headers[k] = v
	}

	priority, _ := fs.GetInt("priority")
	if priority > 255 {
		return msg, fmt.Errorf("invalid --priority %d: must be at most 255", priority)
	}
	if priority >= 0 {
		p := uint8(priority)
		msg.Priority = &p
	}

	body, _ := fs.GetString("body")
	msg.Body = []byte(body)
	if bodyHex, _ := fs.GetString("body-hex"); bodyHex != "" {
		raw, err := hex.DecodeString(bodyHex)
		if err != nil {
			return msg, fmt.Errorf("invalid --body-hex: %w", err)
		}
		msg.Body = raw
	}

	msg.Acked, _ = fs.GetBool("acked")
	return msg, nil
}

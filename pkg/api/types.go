package api

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/bytestream/pkg/codec"
	"github.com/ssargent/bytestream/pkg/protocol"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port            int
	Bind            string
	APIKey          string
	Order           codec.ByteOrder // Default byte order when a request does not name one
	ShutdownTimeout time.Duration   // Grace period for in-flight requests
}

// EncodeResponse carries the wire form of a message
type EncodeResponse struct {
	Order string `json:"order"`
	Hex   string `json:"hex"`
	Size  int    `json:"size"`
}

// DecodeRequest carries hex-encoded wire bytes to decode
type DecodeRequest struct {
	Hex string `json:"hex"`
}

// AppendResponse reports where a message landed in the log
type AppendResponse struct {
	Offset int64  `json:"offset"`
	ID     string `json:"id"`
}

// LogEntry is one message read back from the log
type LogEntry struct {
	Offset  int64            `json:"offset"`
	Message protocol.Message `json:"message"`
}

// DocumentResponse identifies a stored document
type DocumentResponse struct {
	ID       string            `json:"id"`
	Document *protocol.Message `json:"document,omitempty"`
}

// MessageLog is the append-only message log behind /messages
type MessageLog interface {
	Append(m protocol.Message) (int64, error)
	ReadAt(offset int64) (protocol.Message, error)
	Scan(fn func(offset int64, m protocol.Message) error) error
}

// DocumentStore is the keyed message table behind /documents
type DocumentStore interface {
	Create(m protocol.Message) (*ksuid.KSUID, error)
	Read(id *ksuid.KSUID) (protocol.Message, error)
	Delete(id *ksuid.KSUID) error
}

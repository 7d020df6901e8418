package store

import (
	"time"

	"github.com/ssargent/bytestream/pkg/codec"
)

// LogWriterConfig holds configuration for the log writer
type LogWriterConfig struct {
	FilePath      string        // Path to the active data file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// LogReaderConfig holds configuration for the log reader
type LogReaderConfig struct {
	FilePath    string // Path to the data file
	StartOffset int64  // Offset to start reading from
}

// LogConfig holds configuration for a typed message log
type LogConfig struct {
	FilePath      string          // Path to the log file
	Order         codec.ByteOrder // Byte order for newly appended values
	FsyncInterval time.Duration   // Fsync interval for durability
	BufferSize    int             // Write buffer size
	Observer      Observer        // Optional metrics hook
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() *Record
	Offset() int64
	Err() error
	Close() error
}

// Observer is notified about log traffic, typically to export metrics
type Observer interface {
	RecordAppended(bytes int)
	RecordDecoded(err error)
}

type nopObserver struct{}

func (nopObserver) RecordAppended(int) {}
func (nopObserver) RecordDecoded(error) {}

// Errors
var (
	ErrCorruption = &StoreError{"data corruption detected"}
	ErrNotFound   = &StoreError{"record not found"}
	ErrClosed     = &StoreError{"log is closed"}
)

// StoreError represents a message log error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

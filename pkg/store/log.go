package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ssargent/bytestream/pkg/codec"
)

// Log is an append-only file of values of one type. Each value is stored in
// its own checksummed record together with the byte order it was encoded
// with, so a log can hold values written under different orders.
type Log[T any] struct {
	writer   *LogWriter
	codec    codec.Codec[T]
	order    codec.ByteOrder
	observer Observer
	mu       sync.Mutex
	closed   bool
}

// OpenLog opens or creates the log at config.FilePath. config.Order must be
// BigEndian or LittleEndian.
func OpenLog[T any](c codec.Codec[T], config LogConfig) (*Log[T], error) {
	if !config.Order.Valid() {
		return nil, fmt.Errorf("open log %s: %w: %s", config.FilePath, codec.ErrInvalidOrder, config.Order)
	}
	observer := config.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	writer, err := NewLogWriter(LogWriterConfig{
		FilePath:      config.FilePath,
		FsyncInterval: config.FsyncInterval,
		BufferSize:    config.BufferSize,
	})
	if err != nil {
		return nil, err
	}

	return &Log[T]{
		writer:   writer,
		codec:    c,
		order:    config.Order,
		observer: observer,
	}, nil
}

// Append encodes v and returns the offset of its record
func (l *Log[T]) Append(v T) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}

	var buf bytes.Buffer
	if err := l.codec.Encode(&buf, l.order, v); err != nil {
		return 0, err
	}
	record, err := NewRecord(buf.Bytes(), l.order)
	if err != nil {
		return 0, err
	}
	offset, err := l.writer.Append(record)
	if err != nil {
		return 0, err
	}
	l.observer.RecordAppended(record.Size())
	return offset, nil
}

// ReadAt decodes the value whose record starts at offset
func (l *Log[T]) ReadAt(offset int64) (T, error) {
	var zero T
	if err := l.flush(); err != nil {
		return zero, err
	}

	reader, err := NewLogReader(LogReaderConfig{FilePath: l.writer.Path()})
	if err != nil {
		return zero, err
	}
	defer reader.Close()

	record, err := reader.ReadAt(offset)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return l.decode(record)
}

// Scan calls fn for every value in the log, oldest first. It stops at the
// first error from fn or from the log.
func (l *Log[T]) Scan(fn func(offset int64, v T) error) error {
	if err := l.flush(); err != nil {
		return err
	}

	reader, err := NewLogReader(LogReaderConfig{FilePath: l.writer.Path()})
	if err != nil {
		return err
	}
	defer reader.Close()

	it := reader.Iterator()
	defer it.Close()
	for it.Next() {
		v, err := l.decode(it.Record())
		if err != nil {
			return err
		}
		if err := fn(it.Offset(), v); err != nil {
			return err
		}
	}
	return it.Err()
}

// Size returns the size of the log file in bytes
func (l *Log[T]) Size() int64 {
	return l.writer.Size()
}

// Close syncs and closes the log
func (l *Log[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.writer.Close()
}

func (l *Log[T]) flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	return l.writer.Sync()
}

func (l *Log[T]) decode(record *Record) (T, error) {
	v, err := codec.Unmarshal(l.codec, record.Order, record.Payload)
	l.observer.RecordDecoded(err)
	return v, err
}

// Exists reports whether a log file is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

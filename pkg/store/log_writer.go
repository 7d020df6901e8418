package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const defaultBufferSize = 4096

// LogWriter appends framed records to a single log file
type LogWriter struct {
	file       *os.File
	writer     *bufio.Writer
	fsyncTimer *time.Timer
	config     LogWriterConfig
	mutex      sync.Mutex
	offset     int64 // End of the last complete record
	recovered  int64 // Bytes of torn tail dropped on open
	err        error // Sticky write failure
	closed     bool
}

// NewLogWriter opens the log at config.FilePath for appending, creating it
// and its directory if needed. A record left half written by a crash at the
// end of the file is cut off so new records start on a frame boundary.
func NewLogWriter(config LogWriterConfig) (*LogWriter, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	end, size, err := lastFrameBoundary(config.FilePath)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if end < size {
		if err := saveTornTail(config.FilePath, end); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to preserve torn record at offset %d: %w", end, err)
		}
		if err := file.Truncate(end); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to drop torn record at offset %d: %w", end, err)
		}
	}
	if _, err := file.Seek(end, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, err
	}

	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	writer := &LogWriter{
		file:      file,
		writer:    bufio.NewWriterSize(file, bufferSize),
		config:    config,
		offset:    end,
		recovered: size - end,
	}

	if config.FsyncInterval > 0 {
		writer.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			writer.mutex.Lock()
			defer writer.mutex.Unlock()
			if !writer.closed && writer.err == nil {
				_ = writer.sync() // Ignore error in timer callback
			}
		})
	}

	return writer, nil
}

// lastFrameBoundary walks the existing records and returns where appending
// should resume along with the current file size. The bytes from the first
// bad frame onward are only treated as torn when they hold no valid frame and
// are short enough to be a single record cut off by a crash. Anything else is
// damage followed by more data, which is left for readers to report.
func lastFrameBoundary(path string) (int64, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return 0, 0, err
	}
	size := stat.Size()

	rd := bufio.NewReader(file)
	var offset int64
	for {
		_, n, err := readRecord(rd)
		switch {
		case err == nil:
			offset += n
		case err == io.EOF:
			return offset, size, nil
		case errors.Is(err, ErrCorruption):
			torn, err := isTornTail(file, offset, size)
			if err != nil {
				return 0, 0, err
			}
			if torn {
				return offset, size, nil
			}
			return size, size, nil
		default:
			return 0, 0, err
		}
	}
}

// isTornTail reports whether the bytes from offset to size could be the
// remains of one interrupted append. A valid frame starting anywhere inside
// them means a damaged record is followed by live data.
func isTornTail(file *os.File, offset, size int64) (bool, error) {
	if size-offset > HeaderSize+MaxPayloadSize {
		return false, nil
	}
	tail := make([]byte, size-offset)
	if _, err := file.ReadAt(tail, offset); err != nil {
		return false, err
	}
	for start := 1; start+HeaderSize <= len(tail); start++ {
		if _, _, err := readRecord(bytes.NewReader(tail[start:])); err == nil {
			return false, nil
		}
	}
	return true, nil
}

// saveTornTail appends the bytes past end to a ".torn" file next to the log
// before they are cut off.
func saveTornTail(path string, end int64) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if _, err := src.Seek(end, io.SeekStart); err != nil {
		return err
	}

	dst, err := os.OpenFile(path+".torn", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// Append writes a framed record to the log file and returns its offset
func (w *LogWriter) Append(record *Record) (int64, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return 0, ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}

	// A failure part way through leaves an unknown prefix in the buffer, so
	// the writer refuses further appends.
	if err := record.MarshalStream(w.writer, FrameOrder); err != nil {
		w.err = fmt.Errorf("log writer failed at offset %d: %w", w.offset, err)
		return 0, w.err
	}

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			w.err = fmt.Errorf("log writer failed at offset %d: %w", w.offset, err)
			return 0, w.err
		}
	} else if w.fsyncTimer != nil {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	recordOffset := w.offset
	w.offset += int64(record.Size())
	return recordOffset, nil
}

// Sync flushes buffered records and fsyncs the file
func (w *LogWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}
	return w.sync()
}

func (w *LogWriter) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close syncs and closes the file. Calling it again is a no-op.
func (w *LogWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	if w.err == nil {
		if err := w.sync(); err != nil {
			_ = w.file.Close()
			return err
		}
	}
	return w.file.Close()
}

// Size returns the offset the next record will be written at
func (w *LogWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Recovered reports how many bytes of a torn final record were dropped when
// the log was opened
func (w *LogWriter) Recovered() int64 {
	return w.recovered
}

// Path returns the file path
func (w *LogWriter) Path() string {
	return w.config.FilePath
}

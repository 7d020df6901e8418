package store

import (
	"bufio"
	"io"
	"os"

	"github.com/ssargent/bytestream/pkg/codec"
)

// LogReader provides sequential access to records in a log file
type LogReader struct {
	file   *os.File
	reader *bufio.Reader
	offset int64
	config LogReaderConfig
}

// NewLogReader creates a new log reader for the specified file
func NewLogReader(config LogReaderConfig) (*LogReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	// Seek to start offset if specified
	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return &LogReader{
		file:   file,
		reader: bufio.NewReader(file),
		offset: config.StartOffset,
		config: config,
	}, nil
}

// ReadNext reads the next record from the current offset. It returns io.EOF
// when the log ends cleanly on a record boundary.
func (r *LogReader) ReadNext() (*Record, error) {
	record, n, err := readRecord(r.reader)
	r.offset += n
	return record, err
}

// ReadAt reads a record at a specific offset
func (r *LogReader) ReadAt(offset int64) (*Record, error) {
	// Always reopen the file to ensure we see the latest data
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	record, _, err := readRecord(bufio.NewReader(file))
	return record, err
}

// Seek sets the read offset
func (r *LogReader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	r.reader.Reset(r.file) // Drop anything buffered from the old position
	r.offset = offset
	return nil
}

// Offset returns the current read offset
func (r *LogReader) Offset() int64 {
	return r.offset
}

// Iterator returns a streaming iterator for records
func (r *LogReader) Iterator() RecordIterator {
	return &logRecordIterator{reader: r}
}

// Close closes the log reader
func (r *LogReader) Close() error {
	return r.file.Close()
}

// countingReader tracks how many bytes a decode consumed
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// readRecord decodes and validates one frame. A frame cut short after its
// first byte, a bad checksum and an implausible size all report
// ErrCorruption; errors from the file itself pass through.
func readRecord(rd io.Reader) (*Record, int64, error) {
	cr := &countingReader{r: rd}
	record := &Record{}
	if err := record.UnmarshalStream(cr, FrameOrder); err != nil {
		switch codec.KindOf(err) {
		case codec.KindExhausted:
			if cr.n == 0 {
				return nil, 0, io.EOF
			}
			return nil, cr.n, ErrCorruption
		case codec.KindMalformed, codec.KindLengthOverflow:
			return nil, cr.n, ErrCorruption
		default:
			return nil, cr.n, err
		}
	}

	if err := record.Validate(); err != nil {
		return nil, cr.n, ErrCorruption
	}
	return record, cr.n, nil
}

// logRecordIterator implements RecordIterator for streaming access
type logRecordIterator struct {
	reader *LogReader
	record *Record
	offset int64
	err    error
}

func (it *logRecordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.offset = it.reader.Offset()
	it.record, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *logRecordIterator) Record() *Record {
	return it.record
}

// Offset returns the position of the current record
func (it *logRecordIterator) Offset() int64 {
	return it.offset
}

// Err returns the error that stopped iteration, or nil at a clean end
func (it *logRecordIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *logRecordIterator) Close() error {
	// Don't close the underlying reader as it's owned by the caller
	return nil
}

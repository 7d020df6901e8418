package store

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/ssargent/bytestream/pkg/codec"
)

// HeaderSize is the encoded size of a record without its payload:
// CRC32(4) + Order(1) + Timestamp(8) + PayloadSize(4).
const HeaderSize = 17

// MaxPayloadSize bounds a single record so a corrupt size field cannot force
// a huge allocation.
const MaxPayloadSize = 64 << 20

// FrameOrder is the byte order of the record header on disk. The payload uses
// whatever order the record declares.
const FrameOrder = codec.LittleEndian

// Record is one framed, checksummed payload in the log
type Record struct {
	CRC32     uint32          // CRC32 over everything after this field
	Order     codec.ByteOrder // Byte order the payload was encoded with
	Timestamp uint64          // Unix timestamp in nanoseconds
	Payload   []byte          // Encoded value
}

// NewRecord creates a new record with current timestamp and checksum
func NewRecord(payload []byte, order codec.ByteOrder) (*Record, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload of %d bytes exceeds maximum of %d", len(payload), MaxPayloadSize)
	}
	if !order.Valid() {
		return nil, fmt.Errorf("invalid payload byte order %d", uint8(order))
	}
	r := &Record{
		Order:     order,
		Timestamp: uint64(time.Now().UnixNano()),
		Payload:   payload,
	}
	r.CRC32 = r.calculateCRC32()
	return r, nil
}

// MarshalStream writes the record header followed by the payload
func (r *Record) MarshalStream(w io.Writer, order codec.ByteOrder) error {
	if err := codec.Uint32.Encode(w, order, r.CRC32); err != nil {
		return err
	}
	return r.marshalBody(w, order)
}

// marshalBody writes every field covered by the checksum
func (r *Record) marshalBody(w io.Writer, order codec.ByteOrder) error {
	if err := codec.Uint8.Encode(w, order, uint8(r.Order)); err != nil {
		return err
	}
	if err := codec.Uint64.Encode(w, order, r.Timestamp); err != nil {
		return err
	}
	if err := codec.Uint32.Encode(w, order, uint32(len(r.Payload))); err != nil {
		return err
	}
	return codec.Array(len(r.Payload)).Encode(w, order, r.Payload)
}

// UnmarshalStream reads a record written by MarshalStream. It does not check
// the CRC; call Validate for that.
func (r *Record) UnmarshalStream(rd io.Reader, order codec.ByteOrder) (err error) {
	if r.CRC32, err = codec.Uint32.Decode(rd, order); err != nil {
		return err
	}
	rawOrder, err := codec.Uint8.Decode(rd, order)
	if err != nil {
		return err
	}
	r.Order = codec.ByteOrder(rawOrder)
	if r.Timestamp, err = codec.Uint64.Decode(rd, order); err != nil {
		return err
	}
	size, err := codec.Uint32.Decode(rd, order)
	if err != nil {
		return err
	}
	if size > MaxPayloadSize {
		return &codec.Error{Kind: codec.KindMalformed, Op: "record", Err: fmt.Errorf("payload size %d exceeds maximum", size)}
	}
	r.Payload, err = codec.Array(int(size)).Decode(rd, order)
	return err
}

// Encode serializes the record in the on-disk frame format
func (r *Record) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, r.Size()))
	if err := r.MarshalStream(buf, FrameOrder); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRecord deserializes exactly one record from data
func DecodeRecord(data []byte) (*Record, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("data too short for record header: %d < %d", len(data), HeaderSize)
	}
	r := &Record{}
	rd := bytes.NewReader(data)
	if err := r.UnmarshalStream(rd, FrameOrder); err != nil {
		return nil, err
	}
	if rd.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after record", rd.Len())
	}
	return r, nil
}

// Validate checks the integrity of a record using CRC32 and the declared order
func (r *Record) Validate() error {
	if !r.Order.Valid() {
		return fmt.Errorf("invalid payload byte order %d", uint8(r.Order))
	}
	if crc := r.calculateCRC32(); r.CRC32 != crc {
		return fmt.Errorf("CRC32 mismatch: %d != %d", r.CRC32, crc)
	}
	return nil
}

// Size returns the total size of the record when encoded
func (r *Record) Size() int {
	return HeaderSize + len(r.Payload)
}

// calculateCRC32 computes the checksum over all fields after the CRC itself
func (r *Record) calculateCRC32() uint32 {
	crc := crc32.NewIEEE()
	if err := r.marshalBody(crc, FrameOrder); err != nil {
		return 0
	}
	return crc.Sum32()
}

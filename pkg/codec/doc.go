// Package codec provides type-directed binary encoding with a caller-selected
// byte order.
//
// Every supported type has a Codec: a stateless pair of Encode and Decode
// functions that write a value to an io.Writer or read one from an io.Reader.
// The layout is fixed and deterministic, field by field, with no type tags or
// schema in the stream. The reader must already know the shape of what it is
// reading. This is the format used by the message log in pkg/store and by
// the reference messages in pkg/protocol.
//
// # Wire Format
//
// All multi-byte numbers are laid out in the ByteOrder passed to the call:
//
//	bool              1 byte: 0x01 = true, any other byte decodes as false
//	uint8, int8       1 byte, order ignored
//	uint16, int16     2 bytes
//	uint32, int32     4 bytes
//	uint64, int64     8 bytes
//	float32, float64  IEEE-754 bits as uint32 / uint64
//	string            uint16 byte length + raw UTF-8 bytes
//	[]byte            uint16 byte length + raw bytes
//	[]T               uint16 element count + each element
//	map[K]V           uint16 entry count + (key, value) per entry
//	*T (Optional)     bool presence flag + T when present
//	[n]byte (Array)   exactly n raw bytes
//	aggregate         each field in declared order, no framing
//
// Byte strings are never reordered; the byte order governs numeric fields only.
//
// # Usage
//
// Built-in codecs are package variables and constructors:
//
//	data, err := codec.Marshal(codec.Slice(codec.Uint8), codec.BigEndian, []uint8{0, 1, 2, 3, 4})
//	// data = 00 05 00 01 02 03 04
//
//	headers := codec.Map(codec.String, codec.String)
//	err = headers.Encode(conn, codec.LittleEndian, map[string]string{"trace": "on"})
//
// # Aggregates
//
// A user-defined type implements Streamable by calling the codec of each of
// its fields, in the same order for writing and for reading:
//
//	type Peer struct {
//	    Name string
//	    Port uint16
//	}
//
//	func (p *Peer) MarshalStream(w io.Writer, order codec.ByteOrder) error {
//	    if err := codec.String.Encode(w, order, p.Name); err != nil {
//	        return err
//	    }
//	    return codec.Uint16.Encode(w, order, p.Port)
//	}
//
//	func (p *Peer) UnmarshalStream(r io.Reader, order codec.ByteOrder) (err error) {
//	    if p.Name, err = codec.String.Decode(r, order); err != nil {
//	        return err
//	    }
//	    p.Port, err = codec.Uint16.Decode(r, order)
//	    return err
//	}
//
// Struct lifts such a type into a Codec so it nests anywhere a codec is
// accepted, e.g. codec.Slice(codec.Struct[Peer]()). Nothing in the stream
// records field names or positions: if the two methods disagree on order,
// data is silently corrupted.
//
// # Error Handling
//
// Every failure is returned, never logged or defaulted. Failures raised by
// this package are *Error values classified by Kind:
//   - KindExhausted: the reader ran out of bytes (wraps io.EOF or io.ErrUnexpectedEOF)
//   - KindLengthOverflow: a string, slice or map is longer than a 16-bit prefix allows
//   - KindMalformed: the bytes are not valid for the type (bad UTF-8, trailing data)
//
// Errors from the reader or writer itself pass through unchanged and KindOf
// reports them as KindTransport. A failure anywhere inside a nested value
// aborts the whole decode; partially decoded collections and aggregates are
// never returned.
//
// # Thread Safety
//
// Codecs hold no state and are safe for concurrent use. Readers and writers
// are not: each Encode or Decode call assumes exclusive access to its buffer.
package codec

package codec

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// MaxLength is the largest byte length or element count a 16-bit prefix can
// carry.
const MaxLength = math.MaxUint16

// String writes a 16-bit byte length followed by the raw UTF-8 bytes. The
// byte order applies to the length only. Strings that are not valid UTF-8 are
// rejected in both directions.
var String Codec[string] = text{}

// Bytes writes a 16-bit length followed by the raw bytes. It produces the
// same wire form as Slice(Uint8) in a single write.
var Bytes Codec[[]byte] = blob{}

type text struct{}

func (text) Encode(w io.Writer, order ByteOrder, v string) error {
	if len(v) > MaxLength {
		return overflow("string", len(v))
	}
	if !utf8.ValidString(v) {
		return malformed("string", "invalid UTF-8")
	}
	if err := Uint16.Encode(w, order, uint16(len(v))); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return writeFull(w, []byte(v))
}

func (text) Decode(r io.Reader, order ByteOrder) (string, error) {
	n, err := Uint16.Decode(r, order)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := readFull(r, buf, "string"); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", malformed("string", "invalid UTF-8")
	}
	return string(buf), nil
}

type blob struct{}

func (blob) Encode(w io.Writer, order ByteOrder, v []byte) error {
	if len(v) > MaxLength {
		return overflow("bytes", len(v))
	}
	if err := Uint16.Encode(w, order, uint16(len(v))); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return writeFull(w, v)
}

func (blob) Decode(r io.Reader, order ByteOrder) ([]byte, error) {
	n, err := Uint16.Decode(r, order)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := readFull(r, buf, "bytes"); err != nil {
		return nil, err
	}
	return buf, nil
}

// Array returns a codec for exactly n raw bytes with no length prefix, for
// fixed-size fields such as identifiers and checksums.
func Array(n int) Codec[[]byte] {
	if n < 0 {
		panic("codec: negative array length")
	}
	return array{n: n}
}

type array struct {
	n int
}

func (a array) Encode(w io.Writer, _ ByteOrder, v []byte) error {
	if len(v) != a.n {
		return &Error{Kind: KindLengthOverflow, Op: "array", Err: fmt.Errorf("have %d bytes, want %d", len(v), a.n)}
	}
	if a.n == 0 {
		return nil
	}
	return writeFull(w, v)
}

func (a array) Decode(r io.Reader, _ ByteOrder) ([]byte, error) {
	buf := make([]byte, a.n)
	if err := readFull(r, buf, "array"); err != nil {
		return nil, err
	}
	return buf, nil
}

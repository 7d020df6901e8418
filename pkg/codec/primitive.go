package codec

import (
	"io"
	"math"

	"golang.org/x/exp/constraints"
)

// Fixed-width codecs. Single-byte codecs ignore the byte order.
var (
	Bool    Codec[bool]    = boolean{}
	Uint8   Codec[uint8]   = integer[uint8]{op: "uint8", size: 1}
	Int8    Codec[int8]    = integer[int8]{op: "int8", size: 1}
	Uint16  Codec[uint16]  = integer[uint16]{op: "uint16", size: 2}
	Int16   Codec[int16]   = integer[int16]{op: "int16", size: 2}
	Uint32  Codec[uint32]  = integer[uint32]{op: "uint32", size: 4}
	Int32   Codec[int32]   = integer[int32]{op: "int32", size: 4}
	Uint64  Codec[uint64]  = integer[uint64]{op: "uint64", size: 8}
	Int64   Codec[int64]   = integer[int64]{op: "int64", size: 8}
	Float32 Codec[float32] = float32Codec{}
	Float64 Codec[float64] = float64Codec{}
)

// integer encodes any fixed-size integer as size bytes. Signed values are
// written as their two's complement bit pattern.
type integer[T constraints.Integer] struct {
	op   string
	size int
}

func (c integer[T]) Encode(w io.Writer, order ByteOrder, v T) error {
	var buf [8]byte
	b := buf[:c.size]
	putUint(order, b, uint64(v))
	return writeFull(w, b)
}

func (c integer[T]) Decode(r io.Reader, order ByteOrder) (T, error) {
	var buf [8]byte
	b := buf[:c.size]
	if err := readFull(r, b, c.op); err != nil {
		return 0, err
	}
	return T(getUint(order, b)), nil
}

func putUint(order ByteOrder, b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		order.engine().PutUint16(b, uint16(v))
	case 4:
		order.engine().PutUint32(b, uint32(v))
	case 8:
		order.engine().PutUint64(b, v)
	}
}

func getUint(order ByteOrder, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.engine().Uint16(b))
	case 4:
		return uint64(order.engine().Uint32(b))
	default:
		return order.engine().Uint64(b)
	}
}

// boolean writes 0x01 for true and 0x00 for false. Only 0x01 reads back as
// true; every other byte is false.
type boolean struct{}

func (boolean) Encode(w io.Writer, _ ByteOrder, v bool) error {
	b := [1]byte{0}
	if v {
		b[0] = 1
	}
	return writeFull(w, b[:])
}

func (boolean) Decode(r io.Reader, _ ByteOrder) (bool, error) {
	var b [1]byte
	if err := readFull(r, b[:], "bool"); err != nil {
		return false, err
	}
	return b[0] == 1, nil
}

type float32Codec struct{}

func (float32Codec) Encode(w io.Writer, order ByteOrder, v float32) error {
	return Uint32.Encode(w, order, math.Float32bits(v))
}

func (float32Codec) Decode(r io.Reader, order ByteOrder) (float32, error) {
	bits, err := Uint32.Decode(r, order)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

type float64Codec struct{}

func (float64Codec) Encode(w io.Writer, order ByteOrder, v float64) error {
	return Uint64.Encode(w, order, math.Float64bits(v))
}

func (float64Codec) Decode(r io.Reader, order ByteOrder) (float64, error) {
	bits, err := Uint64.Decode(r, order)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

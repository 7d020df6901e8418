package codec

import (
	"bytes"
	"io"
)

// Codec converts values of type T to and from a byte stream.
//
// For every value v and valid order o, decoding the bytes produced by
// Encode(w, o, v) with Decode(r, o) yields v again. Implementations are
// stateless and safe for concurrent use; the reader or writer is not.
type Codec[T any] interface {
	Encode(w io.Writer, order ByteOrder, v T) error
	Decode(r io.Reader, order ByteOrder) (T, error)
}

// Marshaler is implemented by aggregates that write themselves field by field.
type Marshaler interface {
	MarshalStream(w io.Writer, order ByteOrder) error
}

// Unmarshaler is implemented by aggregates that read themselves field by
// field, in the same order MarshalStream writes them. On error the receiver
// is left in an unspecified state.
type Unmarshaler interface {
	UnmarshalStream(r io.Reader, order ByteOrder) error
}

// Streamable is an aggregate that can be both written and read.
type Streamable interface {
	Marshaler
	Unmarshaler
}

type funcCodec[T any] struct {
	encode func(io.Writer, ByteOrder, T) error
	decode func(io.Reader, ByteOrder) (T, error)
}

func (c funcCodec[T]) Encode(w io.Writer, order ByteOrder, v T) error {
	return c.encode(w, order, v)
}

func (c funcCodec[T]) Decode(r io.Reader, order ByteOrder) (T, error) {
	return c.decode(r, order)
}

// Of builds a Codec from a pair of functions. It is the usual way to give a
// type you do not own (an ID from another package, say) a wire form.
func Of[T any](encode func(io.Writer, ByteOrder, T) error, decode func(io.Reader, ByteOrder) (T, error)) Codec[T] {
	return funcCodec[T]{encode: encode, decode: decode}
}

type structCodec[T any, PT interface {
	*T
	Streamable
}] struct{}

func (structCodec[T, PT]) Encode(w io.Writer, order ByteOrder, v T) error {
	return PT(&v).MarshalStream(w, order)
}

func (structCodec[T, PT]) Decode(r io.Reader, order ByteOrder) (T, error) {
	var v T
	if err := PT(&v).UnmarshalStream(r, order); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Struct returns the Codec for an aggregate whose pointer implements
// Streamable, so it can be nested in Slice, Map and Optional:
//
//	peers := codec.Slice(codec.Struct[Peer]())
func Struct[T any, PT interface {
	*T
	Streamable
}]() Codec[T] {
	return structCodec[T, PT]{}
}

// Marshal encodes v into a new byte slice.
func Marshal[T any](c Codec[T], order ByteOrder, v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, order, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes exactly one value from data. Bytes left over after the
// value are reported as a malformed payload.
func Unmarshal[T any](c Codec[T], order ByteOrder, data []byte) (T, error) {
	var zero T
	r := bytes.NewReader(data)
	v, err := c.Decode(r, order)
	if err != nil {
		return zero, err
	}
	if r.Len() != 0 {
		return zero, malformed("unmarshal", "%d trailing bytes", r.Len())
	}
	return v, nil
}

package codec

import "io"

// Slice returns a codec for an ordered list: a 16-bit element count followed
// by each element in order. Lists longer than MaxLength fail to encode.
// Decoding yields a non-nil slice, so nil and empty lists are the same value
// on the wire.
func Slice[T any](elem Codec[T]) Codec[[]T] {
	return sequence[T]{elem: elem}
}

type sequence[T any] struct {
	elem Codec[T]
}

func (s sequence[T]) Encode(w io.Writer, order ByteOrder, v []T) error {
	if len(v) > MaxLength {
		return overflow("slice", len(v))
	}
	if err := Uint16.Encode(w, order, uint16(len(v))); err != nil {
		return err
	}
	for _, item := range v {
		if err := s.elem.Encode(w, order, item); err != nil {
			return err
		}
	}
	return nil
}

func (s sequence[T]) Decode(r io.Reader, order ByteOrder) ([]T, error) {
	n, err := Uint16.Decode(r, order)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := 0; i < int(n); i++ {
		item, err := s.elem.Decode(r, order)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Map returns a codec for an unordered mapping: a 16-bit entry count
// followed by key, value pairs. Entry order on the wire follows Go map
// iteration and is not stable between calls. When a stream repeats a key the
// later entry wins.
func Map[K comparable, V any](key Codec[K], value Codec[V]) Codec[map[K]V] {
	return mapping[K, V]{key: key, value: value}
}

type mapping[K comparable, V any] struct {
	key   Codec[K]
	value Codec[V]
}

func (m mapping[K, V]) Encode(w io.Writer, order ByteOrder, v map[K]V) error {
	if len(v) > MaxLength {
		return overflow("map", len(v))
	}
	if err := Uint16.Encode(w, order, uint16(len(v))); err != nil {
		return err
	}
	for k, val := range v {
		if err := m.key.Encode(w, order, k); err != nil {
			return err
		}
		if err := m.value.Encode(w, order, val); err != nil {
			return err
		}
	}
	return nil
}

func (m mapping[K, V]) Decode(r io.Reader, order ByteOrder) (map[K]V, error) {
	n, err := Uint16.Decode(r, order)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, n)
	for i := 0; i < int(n); i++ {
		k, err := m.key.Decode(r, order)
		if err != nil {
			return nil, err
		}
		val, err := m.value.Decode(r, order)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}

// Optional returns a codec for a value that may be absent: a presence flag
// encoded with Bool, followed by the value when present.
func Optional[T any](inner Codec[T]) Codec[*T] {
	return optional[T]{inner: inner}
}

type optional[T any] struct {
	inner Codec[T]
}

func (o optional[T]) Encode(w io.Writer, order ByteOrder, v *T) error {
	if err := Bool.Encode(w, order, v != nil); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return o.inner.Encode(w, order, *v)
}

func (o optional[T]) Decode(r io.Reader, order ByteOrder) (*T, error) {
	present, err := Bool.Decode(r, order)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := o.inner.Decode(r, order)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

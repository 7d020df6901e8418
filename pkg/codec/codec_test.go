package codec

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"
)

type gauge struct {
	Reading uint32
}

func (g *gauge) MarshalStream(w io.Writer, order ByteOrder) error {
	return Uint32.Encode(w, order, g.Reading)
}

func (g *gauge) UnmarshalStream(r io.Reader, order ByteOrder) (err error) {
	g.Reading, err = Uint32.Decode(r, order)
	return err
}

type station struct {
	ID       uint32
	Channel  uint16
	Gauge    gauge
	Samples  []uint8
	Labels   map[int32]string
	Override *int64
}

func (s *station) MarshalStream(w io.Writer, order ByteOrder) error {
	if err := Uint32.Encode(w, order, s.ID); err != nil {
		return err
	}
	if err := Uint16.Encode(w, order, s.Channel); err != nil {
		return err
	}
	if err := s.Gauge.MarshalStream(w, order); err != nil {
		return err
	}
	if err := Slice(Uint8).Encode(w, order, s.Samples); err != nil {
		return err
	}
	if err := Map(Int32, String).Encode(w, order, s.Labels); err != nil {
		return err
	}
	return Optional(Int64).Encode(w, order, s.Override)
}

func (s *station) UnmarshalStream(r io.Reader, order ByteOrder) (err error) {
	if s.ID, err = Uint32.Decode(r, order); err != nil {
		return err
	}
	if s.Channel, err = Uint16.Decode(r, order); err != nil {
		return err
	}
	if err = s.Gauge.UnmarshalStream(r, order); err != nil {
		return err
	}
	if s.Samples, err = Slice(Uint8).Decode(r, order); err != nil {
		return err
	}
	if s.Labels, err = Map(Int32, String).Decode(r, order); err != nil {
		return err
	}
	s.Override, err = Optional(Int64).Decode(r, order)
	return err
}

// misordered writes B before A but reads A before B.
type misordered struct {
	A uint32
	B uint16
}

func (m *misordered) MarshalStream(w io.Writer, order ByteOrder) error {
	if err := Uint16.Encode(w, order, m.B); err != nil {
		return err
	}
	return Uint32.Encode(w, order, m.A)
}

func (m *misordered) UnmarshalStream(r io.Reader, order ByteOrder) (err error) {
	if m.A, err = Uint32.Decode(r, order); err != nil {
		return err
	}
	m.B, err = Uint16.Decode(r, order)
	return err
}

func sampleStation() station {
	override := int64(-42)
	return station{
		ID:       31,
		Channel:  7,
		Gauge:    gauge{Reading: 23},
		Samples:  []uint8{1, 2, 3, 4},
		Labels:   map[int32]string{1: "A", 2: "B"},
		Override: &override,
	}
}

func TestStruct_RoundTrip(t *testing.T) {
	value := sampleStation()
	c := Struct[station]()

	for _, order := range orders {
		data, err := Marshal(c, order, value)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		got, err := Unmarshal(c, order, data)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if !reflect.DeepEqual(got, value) {
			t.Errorf("%v: got %+v, want %+v", order, got, value)
		}
	}
}

func TestStruct_WireLayout(t *testing.T) {
	data, err := Marshal(Struct[gauge](), LittleEndian, gauge{Reading: 31})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x1f, 0x00, 0x00, 0x00}) {
		t.Errorf("got %x, want 1f000000", data)
	}
}

func TestStruct_Nested(t *testing.T) {
	// Aggregates inside a map inside a slice.
	c := Slice(Map(String, Struct[station]()))
	value := []map[string]station{
		{"north": sampleStation()},
		{},
		{"east": {ID: 1, Samples: []uint8{}, Labels: map[int32]string{}}},
	}

	for _, order := range orders {
		data, err := Marshal(c, order, value)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		got, err := Unmarshal(c, order, data)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if !reflect.DeepEqual(got, value) {
			t.Errorf("%v: got %+v, want %+v", order, got, value)
		}
	}
}

func TestStruct_FieldOrderMismatchDetected(t *testing.T) {
	value := misordered{A: 0x01020304, B: 0x0506}
	got, err := Unmarshal(Struct[misordered](), BigEndian, mustMarshal(t, Struct[misordered](), BigEndian, value))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got == value {
		t.Fatal("expected round trip to fail when encode and decode disagree on field order")
	}
}

func TestStruct_DecodeFailureReturnsZero(t *testing.T) {
	data := mustMarshal(t, Struct[station](), BigEndian, sampleStation())
	got, err := Unmarshal(Struct[station](), BigEndian, data[:10])
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if !reflect.DeepEqual(got, station{}) {
		t.Errorf("expected zero value on failure, got %+v", got)
	}
}

func TestTruncationAlwaysFails(t *testing.T) {
	encoded := map[string][]byte{
		"bool":    mustMarshal(t, Bool, BigEndian, true),
		"uint64":  mustMarshal(t, Uint64, LittleEndian, 1),
		"string":  mustMarshal(t, String, BigEndian, ""),
		"bytes":   mustMarshal(t, Bytes, BigEndian, []byte{1, 2}),
		"slice":   mustMarshal(t, Slice(Int16), BigEndian, []int16{1, -1}),
		"map":     mustMarshal(t, Map(Int32, String), BigEndian, map[int32]string{5: "five"}),
		"station": mustMarshal(t, Struct[station](), BigEndian, sampleStation()),
	}
	decoders := map[string]func([]byte) error{
		"bool":    func(b []byte) error { _, err := Unmarshal(Bool, BigEndian, b); return err },
		"uint64":  func(b []byte) error { _, err := Unmarshal(Uint64, LittleEndian, b); return err },
		"string":  func(b []byte) error { _, err := Unmarshal(String, BigEndian, b); return err },
		"bytes":   func(b []byte) error { _, err := Unmarshal(Bytes, BigEndian, b); return err },
		"slice":   func(b []byte) error { _, err := Unmarshal(Slice(Int16), BigEndian, b); return err },
		"map":     func(b []byte) error { _, err := Unmarshal(Map(Int32, String), BigEndian, b); return err },
		"station": func(b []byte) error { _, err := Unmarshal(Struct[station](), BigEndian, b); return err },
	}

	for name, data := range encoded {
		t.Run(name, func(t *testing.T) {
			decode := decoders[name]
			if err := decode(data); err != nil {
				t.Fatalf("full input failed: %v", err)
			}
			err := decode(data[:len(data)-1])
			if !errors.Is(err, ErrExhausted) {
				t.Errorf("expected ErrExhausted after dropping the last byte, got %v", err)
			}
		})
	}
}

func TestUnmarshal_TrailingBytes(t *testing.T) {
	_, err := Unmarshal(Uint16, BigEndian, []byte{0x00, 0x01, 0x02})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

type failingWriter struct {
	limit int
	err   error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		return 0, w.err
	}
	w.limit -= len(p)
	return len(p), nil
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) / 2, nil
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestTransportErrorsPassThrough(t *testing.T) {
	errBoom := errors.New("connection reset")

	t.Run("writer error mid aggregate", func(t *testing.T) {
		value := sampleStation()
		err := Struct[station]().Encode(&failingWriter{limit: 8, err: errBoom}, BigEndian, value)
		if err != errBoom {
			t.Fatalf("expected the writer's error unchanged, got %v", err)
		}
		if KindOf(err) != KindTransport {
			t.Errorf("KindOf = %v, want %v", KindOf(err), KindTransport)
		}
	})

	t.Run("short write", func(t *testing.T) {
		err := Uint32.Encode(shortWriter{}, BigEndian, 1)
		if !errors.Is(err, io.ErrShortWrite) {
			t.Fatalf("expected io.ErrShortWrite, got %v", err)
		}
	})

	t.Run("reader error", func(t *testing.T) {
		_, err := Slice(String).Decode(failingReader{err: errBoom}, LittleEndian)
		if err != errBoom {
			t.Fatalf("expected the reader's error unchanged, got %v", err)
		}
	})
}

func TestError(t *testing.T) {
	_, err := Unmarshal(Uint32, BigEndian, []byte{0x01})

	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ce.Op != "uint32" || ce.Kind != KindExhausted {
		t.Errorf("got op %q kind %v", ce.Op, ce.Kind)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected error to wrap io.ErrUnexpectedEOF")
	}
	if errors.Is(err, ErrMalformed) {
		t.Errorf("exhaustion error must not match ErrMalformed")
	}
	if got := err.Error(); got != "codec: uint32: input exhausted: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}

	if KindOf(nil) != KindNone {
		t.Errorf("KindOf(nil) = %v", KindOf(nil))
	}
}

func TestOf(t *testing.T) {
	type celsius float64
	temperature := Of(
		func(w io.Writer, order ByteOrder, v celsius) error {
			return Int16.Encode(w, order, int16(v*10))
		},
		func(r io.Reader, order ByteOrder) (celsius, error) {
			raw, err := Int16.Decode(r, order)
			return celsius(raw) / 10, err
		},
	)

	data := mustMarshal(t, temperature, BigEndian, -12.5)
	if !bytes.Equal(data, []byte{0xff, 0x83}) {
		t.Errorf("got %x, want ff83", data)
	}
	got, err := Unmarshal(temperature, BigEndian, data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got != -12.5 {
		t.Errorf("got %v, want -12.5", got)
	}
}

func mustMarshal[T any](t *testing.T, c Codec[T], order ByteOrder, v T) []byte {
	t.Helper()
	data, err := Marshal(c, order, v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return data
}

package codec

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestSlice_LengthPrefix(t *testing.T) {
	data, err := Marshal(Slice(Uint8), BigEndian, []uint8{0, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := []byte{0x00, 0x05, 0x00, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(data, want) {
		t.Fatalf("got %x, want %x", data, want)
	}

	got, err := Unmarshal(Slice(Uint8), BigEndian, data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, []uint8{0, 1, 2, 3, 4}) {
		t.Errorf("got %v, want [0 1 2 3 4]", got)
	}
}

func TestSlice_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		value []string
	}{
		{name: "empty", value: []string{}},
		{name: "single", value: []string{"only"}},
		{name: "order preserved", value: []string{"c", "a", "b", "", "a"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, order := range orders {
				data, err := Marshal(Slice(String), order, tc.value)
				if err != nil {
					t.Fatalf("Marshal failed: %v", err)
				}
				got, err := Unmarshal(Slice(String), order, data)
				if err != nil {
					t.Fatalf("Unmarshal failed: %v", err)
				}
				if !reflect.DeepEqual(got, tc.value) {
					t.Errorf("%v: got %q, want %q", order, got, tc.value)
				}
			}
		})
	}
}

func TestSlice_Nested(t *testing.T) {
	value := [][]int16{{-1, 2}, {}, {0x0102}}
	c := Slice(Slice(Int16))

	data, err := Marshal(c, LittleEndian, value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := []byte{
		0x03, 0x00,
		0x02, 0x00, 0xff, 0xff, 0x02, 0x00,
		0x00, 0x00,
		0x01, 0x00, 0x02, 0x01,
	}
	if !bytes.Equal(data, want) {
		t.Fatalf("got %x, want %x", data, want)
	}

	got, err := Unmarshal(c, LittleEndian, data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, value) {
		t.Errorf("got %v, want %v", got, value)
	}
}

func TestSlice_Overflow(t *testing.T) {
	var buf bytes.Buffer
	err := Slice(Bool).Encode(&buf, BigEndian, make([]bool, MaxLength+1))
	if !errors.Is(err, ErrLengthOverflow) {
		t.Fatalf("expected ErrLengthOverflow, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %d bytes", buf.Len())
	}
}

func TestSlice_CountExceedsInput(t *testing.T) {
	// Declares 3 elements but carries 2.
	data := []byte{0x00, 0x03, 0x0a, 0x0b}
	got, err := Unmarshal(Slice(Uint8), BigEndian, data)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
}

func TestMap_RoundTrip(t *testing.T) {
	value := map[int32]string{1: "A", 2: "B", -7: ""}
	c := Map(Int32, String)

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
			t.Errorf("%v: got %v, want %v", order, got, value)
		}
	}
}

func TestMap_WireLayout(t *testing.T) {
	data, err := Marshal(Map(Uint8, Uint16), BigEndian, map[uint8]uint16{9: 0x0102})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := []byte{0x00, 0x01, 0x09, 0x01, 0x02}
	if !bytes.Equal(data, want) {
		t.Errorf("got %x, want %x", data, want)
	}
}

func TestMap_Empty(t *testing.T) {
	data, err := Marshal(Map(String, Bool), LittleEndian, nil)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x00, 0x00}) {
		t.Errorf("got %x, want 0000", data)
	}
	got, err := Unmarshal(Map(String, Bool), LittleEndian, data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil map, got %#v", got)
	}
}

func TestMap_DuplicateKeyLastWins(t *testing.T) {
	// Two entries for key "k": first "first", then "second".
	data := []byte{
		0x00, 0x02,
		0x00, 0x01, 'k', 0x00, 0x05, 'f', 'i', 'r', 's', 't',
		0x00, 0x01, 'k', 0x00, 0x06, 's', 'e', 'c', 'o', 'n', 'd',
	}
	got, err := Unmarshal(Map(String, String), BigEndian, data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d: %v", len(got), got)
	}
	if got["k"] != "second" {
		t.Errorf("got %q, want the later value %q", got["k"], "second")
	}
}

func TestMap_EntryFailureAborts(t *testing.T) {
	// The second value is not valid UTF-8.
	data := []byte{
		0x00, 0x02,
		0x01, 0x00, 0x01, 'a',
		0x02, 0x00, 0x01, 0xff,
	}
	got, err := Unmarshal(Map(Uint8, String), BigEndian, data)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial map, got %v", got)
	}
}

func TestOptional(t *testing.T) {
	c := Optional(Uint32)
	v := uint32(0x01020304)

	data, err := Marshal(c, BigEndian, &v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x01, 0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("got %x", data)
	}
	got, err := Unmarshal(c, BigEndian, data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got == nil || *got != v {
		t.Errorf("got %v, want %d", got, v)
	}

	data, err = Marshal(c, BigEndian, nil)
	if err != nil {
		t.Fatalf("Marshal(nil) failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x00}) {
		t.Errorf("absent value encoded as %x, want 00", data)
	}
	got, err = Unmarshal(c, BigEndian, data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %d", *got)
	}

	if _, err := Unmarshal(c, BigEndian, []byte{0x01, 0x00}); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted for truncated value, got %v", err)
	}
}

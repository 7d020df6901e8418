package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ByteOrder selects how multi-byte numeric values are laid out on the wire.
// The zero value is not a valid order.
type ByteOrder uint8

const (
	// BigEndian writes the most significant byte first (network order).
	BigEndian ByteOrder = iota + 1
	// LittleEndian writes the least significant byte first.
	LittleEndian
)

// ErrInvalidOrder is returned by constructors given an order other than
// BigEndian or LittleEndian.
var ErrInvalidOrder = errors.New("invalid byte order")

// Valid reports whether o is BigEndian or LittleEndian.
func (o ByteOrder) Valid() bool {
	return o == BigEndian || o == LittleEndian
}

// String returns "big" or "little".
func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "big"
	case LittleEndian:
		return "little"
	default:
		return fmt.Sprintf("ByteOrder(%d)", uint8(o))
	}
}

// ParseByteOrder parses the names accepted in configuration files and on the
// command line.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "big", "be", "big-endian", "bigendian":
		return BigEndian, nil
	case "little", "le", "little-endian", "littleendian":
		return LittleEndian, nil
	default:
		return 0, fmt.Errorf("unknown byte order %q (want big or little)", s)
	}
}

// MarshalText implements encoding.TextMarshaler so orders read naturally in
// YAML and JSON.
func (o ByteOrder) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid byte order %d", uint8(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *ByteOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseByteOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// engine maps o onto the standard library implementation. An invalid order
// is a programming error: it never comes from decoded bytes.
func (o ByteOrder) engine() binary.ByteOrder {
	switch o {
	case BigEndian:
		return binary.BigEndian
	case LittleEndian:
		return binary.LittleEndian
	default:
		panic(fmt.Sprintf("codec: invalid byte order %d", uint8(o)))
	}
}

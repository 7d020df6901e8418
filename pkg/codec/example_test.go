package codec_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ssargent/bytestream/pkg/codec"
)

type Reading struct {
	Sensor string
	Value  int32
	Tags   []string
}

func (r *Reading) MarshalStream(w io.Writer, order codec.ByteOrder) error {
	if err := codec.String.Encode(w, order, r.Sensor); err != nil {
		return err
	}
	if err := codec.Int32.Encode(w, order, r.Value); err != nil {
		return err
	}
	return codec.Slice(codec.String).Encode(w, order, r.Tags)
}

func (r *Reading) UnmarshalStream(rd io.Reader, order codec.ByteOrder) (err error) {
	if r.Sensor, err = codec.String.Decode(rd, order); err != nil {
		return err
	}
	if r.Value, err = codec.Int32.Decode(rd, order); err != nil {
		return err
	}
	r.Tags, err = codec.Slice(codec.String).Decode(rd, order)
	return err
}

// ExampleMarshal demonstrates encoding a list under both byte orders
func ExampleMarshal() {
	values := []uint16{1, 2}

	big, err := codec.Marshal(codec.Slice(codec.Uint16), codec.BigEndian, values)
	if err != nil {
		log.Fatal(err)
	}
	little, err := codec.Marshal(codec.Slice(codec.Uint16), codec.LittleEndian, values)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("big:    % x\n", big)
	fmt.Printf("little: % x\n", little)

	// Output:
	// big:    00 02 00 01 00 02
	// little: 02 00 01 00 02 00
}

// ExampleStruct demonstrates an aggregate written field by field
func ExampleStruct() {
	reading := Reading{Sensor: "t1", Value: -3, Tags: []string{"lab"}}

	var buf bytes.Buffer
	if err := codec.Struct[Reading]().Encode(&buf, codec.BigEndian, reading); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("encoded: % x\n", buf.Bytes())

	decoded, err := codec.Struct[Reading]().Decode(&buf, codec.BigEndian)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("decoded: %s %d %v\n", decoded.Sensor, decoded.Value, decoded.Tags)

	// Output:
	// encoded: 00 02 74 31 ff ff ff fd 00 01 00 03 6c 61 62
	// decoded: t1 -3 [lab]
}

// ExampleKindOf demonstrates classifying a decode failure
func ExampleKindOf() {
	_, err := codec.Unmarshal(codec.String, codec.BigEndian, []byte{0x00, 0x05, 'h', 'i'})

	fmt.Println(codec.KindOf(err))
	fmt.Println(errors.Is(err, codec.ErrExhausted))

	// Output:
	// input exhausted
	// true
}

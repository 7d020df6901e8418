// Package protocol defines the messages exchanged between peers and their
// wire form.
package protocol

import (
	"fmt"
	"io"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/bytestream/pkg/codec"
)

// Message flag bits
const (
	FlagUrgent uint16 = 1 << iota
	FlagReplyRequested
	FlagCompressed
)

// IDSize is the wire size of a message ID
const IDSize = len(ksuid.Nil)

// ID encodes a KSUID as its 20 raw bytes. KSUIDs sort by creation time in
// this form.
var ID = codec.Of(encodeID, decodeID)

func encodeID(w io.Writer, order codec.ByteOrder, id ksuid.KSUID) error {
	return codec.Array(IDSize).Encode(w, order, id.Bytes())
}

func decodeID(r io.Reader, order codec.ByteOrder) (ksuid.KSUID, error) {
	raw, err := codec.Array(IDSize).Decode(r, order)
	if err != nil {
		return ksuid.Nil, err
	}
	id, err := ksuid.FromBytes(raw)
	if err != nil {
		return ksuid.Nil, &codec.Error{Kind: codec.KindMalformed, Op: "ksuid", Err: err}
	}
	return id, nil
}

var (
	tags     = codec.Slice(codec.String)
	headers  = codec.Map(codec.String, codec.String)
	priority = codec.Optional(codec.Uint8)
)

// Peer identifies the sending side of a message
type Peer struct {
	Name string `json:"name"`
	Port uint16 `json:"port"`
}

func (p *Peer) MarshalStream(w io.Writer, order codec.ByteOrder) error {
	if err := codec.String.Encode(w, order, p.Name); err != nil {
		return err
	}
	return codec.Uint16.Encode(w, order, p.Port)
}

func (p *Peer) UnmarshalStream(r io.Reader, order codec.ByteOrder) (err error) {
	if p.Name, err = codec.String.Decode(r, order); err != nil {
		return err
	}
	p.Port, err = codec.Uint16.Decode(r, order)
	return err
}

func (p Peer) String() string {
	return fmt.Sprintf("%s:%d", p.Name, p.Port)
}

// Message is the unit of exchange. Fields are written in declaration order.
type Message struct {
	ID       ksuid.KSUID       `json:"id"`
	Sequence uint32            `json:"sequence"`
	Flags    uint16            `json:"flags"`
	Sender   Peer              `json:"sender"`
	Tags     []string          `json:"tags"`
	Headers  map[string]string `json:"headers"`
	Priority *uint8            `json:"priority,omitempty"`
	Body     []byte            `json:"body"`
	Acked    bool              `json:"acked"`
}

// MessageCodec reads and writes whole messages
var MessageCodec = codec.Struct[Message]()

// NewMessage returns a message with a fresh ID and empty collections
func NewMessage(sender Peer, sequence uint32, body []byte) Message {
	return Message{
		ID:       ksuid.New(),
		Sequence: sequence,
		Sender:   sender,
		Tags:     []string{},
		Headers:  map[string]string{},
		Body:     body,
	}
}

func (m *Message) MarshalStream(w io.Writer, order codec.ByteOrder) error {
	if err := ID.Encode(w, order, m.ID); err != nil {
		return err
	}
	if err := codec.Uint32.Encode(w, order, m.Sequence); err != nil {
		return err
	}
	if err := codec.Uint16.Encode(w, order, m.Flags); err != nil {
		return err
	}
	if err := m.Sender.MarshalStream(w, order); err != nil {
		return err
	}
	if err := tags.Encode(w, order, m.Tags); err != nil {
		return err
	}
	if err := headers.Encode(w, order, m.Headers); err != nil {
		return err
	}
	if err := priority.Encode(w, order, m.Priority); err != nil {
		return err
	}
	if err := codec.Bytes.Encode(w, order, m.Body); err != nil {
		return err
	}
	return codec.Bool.Encode(w, order, m.Acked)
}

func (m *Message) UnmarshalStream(r io.Reader, order codec.ByteOrder) (err error) {
	if m.ID, err = ID.Decode(r, order); err != nil {
		return err
	}
	if m.Sequence, err = codec.Uint32.Decode(r, order); err != nil {
		return err
	}
	if m.Flags, err = codec.Uint16.Decode(r, order); err != nil {
		return err
	}
	if err = m.Sender.UnmarshalStream(r, order); err != nil {
		return err
	}
	if m.Tags, err = tags.Decode(r, order); err != nil {
		return err
	}
	if m.Headers, err = headers.Decode(r, order); err != nil {
		return err
	}
	if m.Priority, err = priority.Decode(r, order); err != nil {
		return err
	}
	if m.Body, err = codec.Bytes.Decode(r, order); err != nil {
		return err
	}
	m.Acked, err = codec.Bool.Decode(r, order)
	return err
}

// HasFlag reports whether every bit in flag is set
func (m *Message) HasFlag(flag uint16) bool {
	return m.Flags&flag == flag
}

// Heartbeat is the smallest message a peer sends
type Heartbeat struct {
	Seq uint32 `json:"seq"`
}

var HeartbeatCodec = codec.Struct[Heartbeat]()

func (h *Heartbeat) MarshalStream(w io.Writer, order codec.ByteOrder) error {
	return codec.Uint32.Encode(w, order, h.Seq)
}

func (h *Heartbeat) UnmarshalStream(r io.Reader, order codec.ByteOrder) (err error) {
	h.Seq, err = codec.Uint32.Decode(r, order)
	return err
}

package codec

import (
	"errors"
	"fmt"
	"io"
)

// Kind classifies a codec failure.
type Kind uint8

const (
	// KindNone is what KindOf reports for a nil error.
	KindNone Kind = iota
	// KindExhausted means the source ran out of bytes before a value was complete.
	KindExhausted
	// KindLengthOverflow means a value is too long for its length prefix.
	KindLengthOverflow
	// KindMalformed means the bytes are not a valid encoding of the target type.
	KindMalformed
	// KindTransport means the underlying reader or writer failed.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindExhausted:
		return "input exhausted"
	case KindLengthOverflow:
		return "length overflow"
	case KindMalformed:
		return "malformed payload"
	case KindTransport:
		return "transport error"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Error is the failure reported by the built-in codecs.
type Error struct {
	Kind Kind
	Op   string // codec that failed, e.g. "uint32" or "string"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := "codec"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind, so
// errors.Is(err, ErrExhausted) holds for any exhaustion error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrExhausted      = &Error{Kind: KindExhausted}
	ErrLengthOverflow = &Error{Kind: KindLengthOverflow}
	ErrMalformed      = &Error{Kind: KindMalformed}
)

// KindOf classifies err. Errors that did not originate in this package come
// from the caller's reader or writer and are reported as KindTransport.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransport
}

func malformed(op string, format string, args ...any) error {
	return &Error{Kind: KindMalformed, Op: op, Err: fmt.Errorf(format, args...)}
}

func overflow(op string, n int) error {
	return &Error{Kind: KindLengthOverflow, Op: op, Err: fmt.Errorf("%d exceeds maximum of %d", n, MaxLength)}
}

// readFull reads exactly len(b) bytes. Running out of input is reported as
// KindExhausted; any other reader error is returned unchanged.
func readFull(r io.Reader, b []byte, op string) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &Error{Kind: KindExhausted, Op: op, Err: err}
		}
		return err
	}
	return nil
}

// writeFull writes all of b or reports why it could not.
func writeFull(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}

package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/bytestream/pkg/codec"
)

// ErrNotFound is returned when no document has the requested id
var ErrNotFound = errors.New("document not found")

// Table stores values of one type in pebble, encoded with a codec and keyed
// by KSUID. Writes through one Table are serialized; a pebble directory must
// not be shared between processes.
type Table[T any] struct {
	db    *pebble.DB
	codec codec.Codec[T]
	order codec.ByteOrder
	mu    sync.Mutex // held by Update and Delete
}

func NewTable[T any](path string, c codec.Codec[T], order codec.ByteOrder) (*Table[T], error) {
	if !order.Valid() {
		return nil, fmt.Errorf("open table %s: %w: %s", path, codec.ErrInvalidOrder, order)
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Table[T]{db: db, codec: c, order: order}, nil
}

func (s *Table[T]) Create(v T) (*ksuid.KSUID, error) {
	data, err := codec.Marshal(s.codec, s.order, v)
	if err != nil {
		return nil, err
	}

	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return nil, err
	}

	return &id, nil
}

func (s *Table[T]) Read(id *ksuid.KSUID) (T, error) {
	var zero T
	data, closer, err := s.db.Get(id.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	defer closer.Close()

	// data is only valid until closer is closed; decoding copies out of it
	return codec.Unmarshal(s.codec, s.order, data)
}

// Update replaces an existing document. The existence check and the write
// happen under the table lock so a concurrent Delete cannot be undone.
func (s *Table[T]) Update(id *ksuid.KSUID, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Read(id); err != nil {
		return err
	}
	data, err := codec.Marshal(s.codec, s.order, v)
	if err != nil {
		return err
	}
	return s.db.Set(id.Bytes(), data, pebble.NoSync)
}

func (s *Table[T]) Delete(id *ksuid.KSUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Delete(id.Bytes(), pebble.NoSync)
}

func (s *Table[T]) Close() error {
	return s.db.Close()
}

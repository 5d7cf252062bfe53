// Package ids allocates listing and bucket identifiers. An id handed out
// once stays recorded in the used-id set forever, so deleting a record never
// makes its id available again.
package ids

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goMarketd/internal/core/state"
)

// Kind selects the id space.
type Kind string

const (
	KindListing Kind = "l"
	KindBucket  Kind = "b"
)

// DefaultMaxID is the sanity bound applied when none is configured.
const DefaultMaxID uint64 = 1 << 48

var (
	// ErrUsed is returned when an id has been allocated before.
	ErrUsed = errors.New("id already used")

	// ErrOutOfRange is returned for zero or ids above the configured bound.
	ErrOutOfRange = errors.New("id out of range")
)

// Key encodes id big-endian behind prefix so ids sort numerically.
func Key(prefix string, id uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return prefix + string(buf[:])
}

// Decode is the inverse of Key for the trailing 8 bytes of key.
func Decode(key string) (uint64, error) {
	if len(key) < 8 {
		return 0, fmt.Errorf("key too short for id: %d bytes", len(key))
	}
	return binary.BigEndian.Uint64([]byte(key[len(key)-8:])), nil
}

// Registry is the used-id set and auto-increment counter of one Kind, read
// and written through a state table.
type Registry struct {
	table *state.Table
	kind  Kind
	maxID uint64
}

// NewRegistry binds a registry to table. A zero maxID selects DefaultMaxID.
func NewRegistry(table *state.Table, kind Kind, maxID uint64) *Registry {
	if maxID == 0 {
		maxID = DefaultMaxID
	}
	return &Registry{table: table, kind: kind, maxID: maxID}
}

func (r *Registry) usedKey(id uint64) string {
	return Key("u/"+string(r.kind)+"/", id)
}

func (r *Registry) counterKey() string {
	return "c/" + string(r.kind)
}

// IsUsed reports whether id was ever allocated.
func (r *Registry) IsUsed(id uint64) (bool, error) {
	return r.table.Exists(r.usedKey(id))
}

// MarkUsed records a caller-chosen id as allocated. The counter is left
// alone; Allocate steps over used ids instead.
func (r *Registry) MarkUsed(id uint64) error {
	if id == 0 || id > r.maxID {
		return fmt.Errorf("%w: %d (max %d)", ErrOutOfRange, id, r.maxID)
	}
	used, err := r.IsUsed(id)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: %s/%d", ErrUsed, r.kind, id)
	}
	if err := r.table.Insert(r.usedKey(id), []byte{1}); err != nil {
		return fmt.Errorf("failed to mark id %d used: %w", id, err)
	}
	return nil
}

// Allocate returns the next unused id and marks it used.
func (r *Registry) Allocate() (uint64, error) {
	current, err := r.Counter()
	if err != nil {
		return 0, err
	}
	next := current + 1
	for {
		if next > r.maxID {
			return 0, fmt.Errorf("%w: %s ids exhausted", ErrOutOfRange, r.kind)
		}
		used, err := r.IsUsed(next)
		if err != nil {
			return 0, err
		}
		if !used {
			break
		}
		next++
	}
	if err := r.MarkUsed(next); err != nil {
		return 0, err
	}
	if err := r.setCounter(next); err != nil {
		return 0, err
	}
	return next, nil
}

// Counter returns the last auto-allocated id.
func (r *Registry) Counter() (uint64, error) {
	data, err := r.table.Read(r.counterKey())
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt %s counter: %d bytes", r.kind, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (r *Registry) setCounter(id uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return r.table.Put(r.counterKey(), buf[:])
}

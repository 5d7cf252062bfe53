// Package state provides the write buffer every market operation runs in.
// Reads fall through to the committed database; writes are tracked in
// memory and reach the database in one atomic batch on Commit. Discarding
// the table leaves committed state untouched.
package state

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LeJamon/goMarketd/internal/storage/database"
)

var (
	// ErrExists is returned by Insert for a key that is already present.
	ErrExists = errors.New("entry already exists")

	// ErrNotFound is returned by Update and Erase for a missing key.
	ErrNotFound = errors.New("entry not found")

	// ErrCommitted is returned when a table is used after Commit.
	ErrCommitted = errors.New("table already committed")
)

// Action represents the type of modification to an entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents an entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// Table wraps a database and tracks all modifications made by one operation.
type Table struct {
	ctx       context.Context
	base      database.DB
	items     map[string]*TrackedEntry
	committed bool
}

// NewTable creates a new Table wrapping the given base database
func NewTable(ctx context.Context, base database.DB) *Table {
	return &Table{
		ctx:   ctx,
		base:  base,
		items: make(map[string]*TrackedEntry),
	}
}

// readBase returns nil, nil for missing keys.
func (t *Table) readBase(key string) ([]byte, error) {
	data, err := t.base.Read(t.ctx, []byte(key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return data, nil
}

// Read returns the current value of key, or nil if it does not exist.
func (t *Table) Read(key string) ([]byte, error) {
	if t.committed {
		return nil, ErrCommitted
	}
	if entry, exists := t.items[key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.readBase(key)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *Table) Exists(key string) (bool, error) {
	data, err := t.Read(key)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Insert adds a new entry
func (t *Table) Insert(key string, data []byte) error {
	if t.committed {
		return ErrCommitted
	}
	if entry, exists := t.items[key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("%w: %q", ErrExists, key)
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	original, err := t.readBase(key)
	if err != nil {
		return err
	}
	if original != nil {
		return fmt.Errorf("%w: %q", ErrExists, key)
	}

	t.items[key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *Table) Update(key string, data []byte) error {
	if t.committed {
		return ErrCommitted
	}
	if entry, exists := t.items[key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("%w: %q (deleted)", ErrNotFound, key)
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		entry.Current = data
		return nil
	}

	original, err := t.readBase(key)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	t.items[key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Put inserts or updates key.
func (t *Table) Put(key string, data []byte) error {
	exists, err := t.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return t.Update(key, data)
	}
	return t.Insert(key, data)
}

// Erase removes an entry
func (t *Table) Erase(key string) error {
	if t.committed {
		return ErrCommitted
	}
	if entry, exists := t.items[key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("%w: %q (already deleted)", ErrNotFound, key)
		}
		if entry.Action == ActionInsert {
			// Inserting then deleting = no change
			delete(t.items, key)
			return nil
		}
		entry.Action = ActionErase
		return nil
	}

	original, err := t.readBase(key)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	t.items[key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// Changes returns the batch operations the table would commit, in key order.
func (t *Table) Changes() []database.BatchOperation {
	keys := make([]string, 0, len(t.items))
	for k, e := range t.items {
		if e.Action != ActionCache {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	ops := make([]database.BatchOperation, 0, len(keys))
	for _, k := range keys {
		e := t.items[k]
		switch e.Action {
		case ActionInsert, ActionModify:
			ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: []byte(k), Value: e.Current})
		case ActionErase:
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: []byte(k)})
		}
	}
	return ops
}

// Commit writes every tracked change to the base database in one batch.
// The table cannot be used afterwards.
func (t *Table) Commit() error {
	if t.committed {
		return ErrCommitted
	}
	ops := t.Changes()
	if len(ops) > 0 {
		if err := t.base.Batch(t.ctx, ops); err != nil {
			return fmt.Errorf("failed to commit %d changes: %w", len(ops), err)
		}
	}
	t.committed = true
	return nil
}

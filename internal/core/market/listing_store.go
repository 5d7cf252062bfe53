package market

import (
	"fmt"

	"github.com/LeJamon/goMarketd/internal/core/state"
	"github.com/LeJamon/goMarketd/internal/storage/codec"
)

// ListingStore reads and writes listings and their indices inside one
// operation's state table. Every listing is stored under (creator, id), with
// a unique id index pointing at that key and, once finalized, an entry in the
// finalize index.
type ListingStore struct {
	table *state.Table
	codec *codec.Codec
}

// NewListingStore binds a store to table.
func NewListingStore(table *state.Table, c *codec.Codec) *ListingStore {
	return &ListingStore{table: table, codec: c}
}

// Get loads the listing stored under (owner, id).
func (s *ListingStore) Get(owner string, id uint64) (*Listing, error) {
	return s.load(listingKey(owner, id), id)
}

// GetByID loads a listing through the id index.
func (s *ListingStore) GetByID(id uint64) (*Listing, error) {
	primary, err := s.table.Read(listingIDKey(id))
	if err != nil {
		return nil, generic("read listing index: %v", err)
	}
	if primary == nil {
		return nil, notFound(KindListing, id)
	}
	return s.load(string(primary), id)
}

// Exists reports whether a live listing with id exists under any owner.
func (s *ListingStore) Exists(id uint64) (bool, error) {
	ok, err := s.table.Exists(listingIDKey(id))
	if err != nil {
		return false, generic("read listing index: %v", err)
	}
	return ok, nil
}

func (s *ListingStore) load(key string, id uint64) (*Listing, error) {
	data, err := s.table.Read(key)
	if err != nil {
		return nil, generic("read listing %d: %v", id, err)
	}
	if data == nil {
		return nil, notFound(KindListing, id)
	}
	var rec listingRecord
	if err := s.codec.Unmarshal(data, &rec); err != nil {
		return nil, generic("decode listing %d: %v", id, err)
	}
	l, err := rec.toListing()
	if err != nil {
		return nil, generic("decode listing %d: %v", id, err)
	}
	return l, nil
}

func (s *ListingStore) encode(l *Listing) ([]byte, error) {
	data, err := s.codec.Marshal(fromListing(l))
	if err != nil {
		return nil, generic("encode listing %d: %v", l.ID, err)
	}
	return data, nil
}

// Insert stores a new listing and its indices.
func (s *ListingStore) Insert(l *Listing) error {
	data, err := s.encode(l)
	if err != nil {
		return err
	}
	key := listingKey(l.Creator, l.ID)
	if err := s.table.Insert(key, data); err != nil {
		return fmt.Errorf("%w: listing %d: %v", ErrIdAlreadyExists, l.ID, err)
	}
	if err := s.table.Insert(listingIDKey(l.ID), []byte(key)); err != nil {
		return fmt.Errorf("%w: listing %d: %v", ErrIdAlreadyExists, l.ID, err)
	}
	return s.indexFinalized(l, key)
}

// Save overwrites an existing listing under its current key.
func (s *ListingStore) Save(l *Listing) error {
	data, err := s.encode(l)
	if err != nil {
		return err
	}
	key := listingKey(l.Creator, l.ID)
	if err := s.table.Update(key, data); err != nil {
		return generic("save listing %d: %v", l.ID, err)
	}
	return s.indexFinalized(l, key)
}

// Delete removes the listing and every index entry pointing at it.
func (s *ListingStore) Delete(l *Listing) error {
	if err := s.table.Erase(listingKey(l.Creator, l.ID)); err != nil {
		return generic("delete listing %d: %v", l.ID, err)
	}
	if err := s.table.Erase(listingIDKey(l.ID)); err != nil {
		return generic("delete listing index %d: %v", l.ID, err)
	}
	if l.IsFinalized() {
		if err := s.table.Erase(finalizeKey(l.FinalizedAt, l.ID)); err != nil {
			return generic("delete finalize index %d: %v", l.ID, err)
		}
	}
	return nil
}

func (s *ListingStore) indexFinalized(l *Listing, key string) error {
	if !l.IsFinalized() {
		return nil
	}
	if err := s.table.Put(finalizeKey(l.FinalizedAt, l.ID), []byte(key)); err != nil {
		return generic("index finalized listing %d: %v", l.ID, err)
	}
	return nil
}

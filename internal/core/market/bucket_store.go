package market

import (
	"fmt"

	"github.com/LeJamon/goMarketd/internal/core/state"
	"github.com/LeJamon/goMarketd/internal/storage/codec"
)

// BucketStore reads and writes buckets inside one operation's state table.
// Buckets are stored under (owner, id) with a unique id index.
type BucketStore struct {
	table *state.Table
	codec *codec.Codec
}

// NewBucketStore binds a store to table.
func NewBucketStore(table *state.Table, c *codec.Codec) *BucketStore {
	return &BucketStore{table: table, codec: c}
}

// Get loads the bucket stored under (owner, id).
func (s *BucketStore) Get(owner string, id uint64) (*Bucket, error) {
	return s.load(bucketKey(owner, id), id)
}

func (s *BucketStore) load(key string, id uint64) (*Bucket, error) {
	data, err := s.table.Read(key)
	if err != nil {
		return nil, generic("read bucket %d: %v", id, err)
	}
	if data == nil {
		return nil, notFound(KindBucket, id)
	}
	var rec bucketRecord
	if err := s.codec.Unmarshal(data, &rec); err != nil {
		return nil, generic("decode bucket %d: %v", id, err)
	}
	b, err := rec.toBucket()
	if err != nil {
		return nil, generic("decode bucket %d: %v", id, err)
	}
	return b, nil
}

// GetByID loads a bucket through the id index.
func (s *BucketStore) GetByID(id uint64) (*Bucket, error) {
	primary, err := s.table.Read(bucketIDKey(id))
	if err != nil {
		return nil, generic("read bucket index: %v", err)
	}
	if primary == nil {
		return nil, notFound(KindBucket, id)
	}
	return s.load(string(primary), id)
}

// Exists reports whether a live bucket with id exists under any owner.
func (s *BucketStore) Exists(id uint64) (bool, error) {
	ok, err := s.table.Exists(bucketIDKey(id))
	if err != nil {
		return false, generic("read bucket index: %v", err)
	}
	return ok, nil
}

func (s *BucketStore) encode(b *Bucket) ([]byte, error) {
	data, err := s.codec.Marshal(fromBucket(b))
	if err != nil {
		return nil, generic("encode bucket %d: %v", b.ID, err)
	}
	return data, nil
}

// Insert stores a new bucket and its id index.
func (s *BucketStore) Insert(b *Bucket) error {
	data, err := s.encode(b)
	if err != nil {
		return err
	}
	key := bucketKey(b.Owner, b.ID)
	if err := s.table.Insert(key, data); err != nil {
		return fmt.Errorf("%w: bucket %d: %v", ErrIdAlreadyExists, b.ID, err)
	}
	if err := s.table.Insert(bucketIDKey(b.ID), []byte(key)); err != nil {
		return fmt.Errorf("%w: bucket %d: %v", ErrIdAlreadyExists, b.ID, err)
	}
	return nil
}

// Save overwrites an existing bucket under its current key.
func (s *BucketStore) Save(b *Bucket) error {
	data, err := s.encode(b)
	if err != nil {
		return err
	}
	if err := s.table.Update(bucketKey(b.Owner, b.ID), data); err != nil {
		return generic("save bucket %d: %v", b.ID, err)
	}
	return nil
}

// Delete removes the bucket and its id index.
func (s *BucketStore) Delete(b *Bucket) error {
	if err := s.table.Erase(bucketKey(b.Owner, b.ID)); err != nil {
		return generic("delete bucket %d: %v", b.ID, err)
	}
	if err := s.table.Erase(bucketIDKey(b.ID)); err != nil {
		return generic("delete bucket index %d: %v", b.ID, err)
	}
	return nil
}

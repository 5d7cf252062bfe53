package market

import (
	"context"
	"fmt"

	"github.com/LeJamon/goMarketd/internal/core/fee"
	"github.com/LeJamon/goMarketd/internal/core/ids"
	"github.com/LeJamon/goMarketd/internal/core/royalty"
	"github.com/LeJamon/goMarketd/internal/core/state"
	"github.com/LeJamon/goMarketd/internal/storage/database"
)

// PageSize is the number of records returned per query page.
const PageSize = 20

// MarketWindow is how far back the market query looks for finalized
// listings, in seconds.
const MarketWindow int64 = 14 * 24 * 60 * 60

// Queries read committed state only and never take the engine lock.

// snapshot returns a table used purely for reads; it is never committed.
func (e *Engine) snapshot(ctx context.Context) *state.Table {
	return state.NewTable(ctx, e.db)
}

// Listing returns a listing by id.
func (e *Engine) Listing(ctx context.Context, id uint64) (*Listing, error) {
	return NewListingStore(e.snapshot(ctx), e.codec).GetByID(id)
}

// Bucket returns a bucket by id.
func (e *Engine) Bucket(ctx context.Context, id uint64) (*Bucket, error) {
	return NewBucketStore(e.snapshot(ctx), e.codec).GetByID(id)
}

// ListingsByOwner returns one page of the listings keyed by owner, in id
// order. Bought listings are keyed by their buyer.
func (e *Engine) ListingsByOwner(ctx context.Context, owner string, page int) ([]*Listing, error) {
	store := NewListingStore(e.snapshot(ctx), e.codec)
	prefix := []byte(listingOwnerPrefix(owner))
	return collectPage(ctx, e.db, prefix, database.PrefixEnd(prefix), page, func(key string, _ []byte) (*Listing, bool, error) {
		id, err := ids.Decode(key)
		if err != nil {
			return nil, false, generic("listing key: %v", err)
		}
		l, err := store.Get(owner, id)
		return l, err == nil, err
	})
}

// BucketsByOwner returns one page of the buckets keyed by owner, in id order.
func (e *Engine) BucketsByOwner(ctx context.Context, owner string, page int) ([]*Bucket, error) {
	store := NewBucketStore(e.snapshot(ctx), e.codec)
	prefix := []byte(bucketOwnerPrefix(owner))
	return collectPage(ctx, e.db, prefix, database.PrefixEnd(prefix), page, func(key string, _ []byte) (*Bucket, bool, error) {
		id, err := ids.Decode(key)
		if err != nil {
			return nil, false, generic("bucket key: %v", err)
		}
		b, err := store.Get(owner, id)
		return b, err == nil, err
	})
}

// ListingsForMarket returns one page of the unsold, unexpired listings
// finalized within MarketWindow before now, oldest first.
func (e *Engine) ListingsForMarket(ctx context.Context, now int64, page int) ([]*Listing, error) {
	from := now - MarketWindow
	if from < 0 {
		from = 0
	}
	start := []byte(ids.Key(prefixListingFinal, uint64(from)))
	end := database.PrefixEnd([]byte(prefixListingFinal))

	store := NewListingStore(e.snapshot(ctx), e.codec)
	return collectPage(ctx, e.db, start, end, page, func(key string, value []byte) (*Listing, bool, error) {
		id, err := ids.Decode(key)
		if err != nil {
			return nil, false, generic("finalize key: %v", err)
		}
		l, err := store.load(string(value), id)
		if err != nil {
			return nil, false, err
		}
		return l, l.Status == StatusFinalizedReady && !l.IsClaimed() && !l.IsExpired(now), nil
	})
}

// FeeDenom returns the fee currency state. Before the first operation it
// reports the configured starting state.
func (e *Engine) FeeDenom(ctx context.Context) (*fee.DenomState, error) {
	s, _, err := loadFeeState(e.snapshot(ctx), e, 0)
	return s, err
}

// Royalty returns the registration of a collection, or nil.
func (e *Engine) Royalty(ctx context.Context, collection string) (*royalty.Registration, error) {
	return e.royalties.ReadView(e.snapshot(ctx)).Get(collection)
}

// collectPage walks [start, end) and returns the requested page of the
// entries decode accepts. Rejected entries do not use page space.
func collectPage[T any](ctx context.Context, db database.DB, start, end []byte, page int, decode func(key string, value []byte) (T, bool, error)) ([]T, error) {
	if page < 0 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	it, err := db.Iterator(ctx, start, end)
	if err != nil {
		return nil, generic("iterate: %v", err)
	}
	defer it.Close()

	skip := page * PageSize
	out := make([]T, 0, PageSize)
	for len(out) < PageSize && it.Next() {
		item, ok, err := decode(string(it.Key()), it.Value())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, item)
	}
	if err := it.Error(); err != nil {
		return nil, generic("iterate: %v", err)
	}
	return out, nil
}

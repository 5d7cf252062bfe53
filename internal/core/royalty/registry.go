package royalty

import (
	"context"
	"fmt"
	"sort"

	"github.com/LeJamon/goMarketd/internal/core/contracts"
	"github.com/LeJamon/goMarketd/internal/core/state"
	"github.com/LeJamon/goMarketd/internal/storage/codec"
)

// Registry is the long-lived half of the royalty registry: the minter
// lookup, the record codec and the committed-state cache.
type Registry struct {
	inspector contracts.Inspector
	codec     *codec.Codec
	cache     *Cache
}

// NewRegistry creates a registry. cache may be nil.
func NewRegistry(inspector contracts.Inspector, c *codec.Codec, cache *Cache) *Registry {
	return &Registry{inspector: inspector, codec: c, cache: cache}
}

// View binds the registry to the state table of one operation. Its misses
// fill the cache, so it must only be used while the caller holds the write
// lock that also covers commit and Invalidate.
func (r *Registry) View(table *state.Table) *View {
	return &View{registry: r, table: table, fill: true, touched: make(map[string]struct{})}
}

// ReadView binds the registry to a snapshot read outside that lock. It uses
// cached entries but never adds to the cache, and it cannot write.
func (r *Registry) ReadView(table *state.Table) *View {
	return &View{registry: r, table: table, readOnly: true, touched: make(map[string]struct{})}
}

// Invalidate drops collections from the cache. It is called once the
// operation that wrote them has committed.
func (r *Registry) Invalidate(collections ...string) {
	if r.cache == nil {
		return
	}
	for _, c := range collections {
		r.cache.Invalidate(c)
	}
}

// View reads and writes registrations inside one operation.
type View struct {
	registry *Registry
	table    *state.Table
	fill     bool
	readOnly bool
	touched  map[string]struct{}
}

// Get returns the registration of collection, or nil if there is none.
func (v *View) Get(collection string) (*Registration, error) {
	cache := v.registry.cache
	_, dirty := v.touched[collection]
	if cache != nil && !dirty {
		if reg, ok := cache.Get(collection); ok {
			return reg, nil
		}
	}

	data, err := v.table.Read(Key(collection))
	if err != nil {
		return nil, err
	}
	var reg *Registration
	if data != nil {
		reg = &Registration{}
		if err := v.registry.codec.Unmarshal(data, reg); err != nil {
			return nil, fmt.Errorf("failed to decode royalty registration %s: %w", collection, err)
		}
	}
	if cache != nil && v.fill && !dirty {
		cache.Add(collection, reg)
	}
	return reg, nil
}

// LookupMany returns the registrations of collections in order, with nil for
// every unregistered collection.
func (v *View) LookupMany(collections []string) ([]*Registration, error) {
	out := make([]*Registration, len(collections))
	for i, c := range collections {
		reg, err := v.Get(c)
		if err != nil {
			return nil, err
		}
		out[i] = reg
	}
	return out, nil
}

// Register creates the registration of a collection. Only the collection's
// minter may register it.
func (v *View) Register(ctx context.Context, height uint64, sender, collection, payout string, bps uint32) (*Registration, error) {
	if v.readOnly {
		return nil, ErrReadOnly
	}
	if err := v.checkMinter(ctx, sender, collection); err != nil {
		return nil, err
	}
	if err := checkTerms(payout, bps); err != nil {
		return nil, err
	}
	existing, err := v.Get(collection)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, collection)
	}

	reg := &Registration{Collection: collection, Payout: payout, Bps: bps, LastUpdated: height}
	if err := v.write(reg, true); err != nil {
		return nil, err
	}
	return reg, nil
}

// Update changes payout and rate of an existing registration. At least
// UpdateCooldown blocks must have passed since the last change.
func (v *View) Update(ctx context.Context, height uint64, sender, collection, payout string, bps uint32) (*Registration, error) {
	if v.readOnly {
		return nil, ErrReadOnly
	}
	if err := v.checkMinter(ctx, sender, collection); err != nil {
		return nil, err
	}
	if err := checkTerms(payout, bps); err != nil {
		return nil, err
	}
	reg, err := v.Get(collection)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, collection)
	}
	if height < reg.LastUpdated+UpdateCooldown {
		return nil, fmt.Errorf("%w: last update at %d, next allowed at %d", ErrCooldown, reg.LastUpdated, reg.LastUpdated+UpdateCooldown)
	}

	updated := &Registration{Collection: collection, Payout: payout, Bps: bps, LastUpdated: height}
	if err := v.write(updated, false); err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes the registration of a collection.
func (v *View) Remove(ctx context.Context, sender, collection string) error {
	if v.readOnly {
		return ErrReadOnly
	}
	if err := v.checkMinter(ctx, sender, collection); err != nil {
		return err
	}
	reg, err := v.Get(collection)
	if err != nil {
		return err
	}
	if reg == nil {
		return fmt.Errorf("%w: %s", ErrNotRegistered, collection)
	}
	v.touched[collection] = struct{}{}
	v.registry.Invalidate(collection)
	return v.table.Erase(Key(collection))
}

// Touched returns the collections written through this view, sorted.
func (v *View) Touched() []string {
	out := make([]string, 0, len(v.touched))
	for c := range v.touched {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (v *View) write(reg *Registration, insert bool) error {
	data, err := v.registry.codec.Marshal(reg)
	if err != nil {
		return err
	}
	v.touched[reg.Collection] = struct{}{}
	v.registry.Invalidate(reg.Collection)
	if insert {
		return v.table.Insert(Key(reg.Collection), data)
	}
	return v.table.Update(Key(reg.Collection), data)
}

func (v *View) checkMinter(ctx context.Context, sender, collection string) error {
	minter, err := v.registry.inspector.Minter(ctx, collection)
	if err != nil {
		return fmt.Errorf("%w: minter query for %s failed: %v", ErrNotMinter, collection, err)
	}
	if minter == "" || minter != sender {
		return fmt.Errorf("%w: %s", ErrNotMinter, collection)
	}
	return nil
}

func checkTerms(payout string, bps uint32) error {
	if payout == "" {
		return ErrInvalidPayout
	}
	if !validBps(bps) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidBps, bps, MinBps, MaxBps)
	}
	return nil
}

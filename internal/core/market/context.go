package market

import (
	"context"
	"fmt"

	"github.com/LeJamon/goMarketd/internal/core/fee"
	"github.com/LeJamon/goMarketd/internal/core/ids"
	"github.com/LeJamon/goMarketd/internal/core/royalty"
	"github.com/LeJamon/goMarketd/internal/core/state"
)

// ApplyContext is everything one operation reads and writes. All stores
// share the same state table.
type ApplyContext struct {
	Context context.Context
	Env     Env
	Sender  string

	Table      *state.Table
	Listings   *ListingStore
	Buckets    *BucketStore
	ListingIDs *ids.Registry
	BucketIDs  *ids.Registry
	Royalties  *royalty.View

	Result *Result

	engine   *Engine
	feeState *fee.DenomState
}

func (e *Engine) newApplyContext(ctx context.Context, env Env, sender string, table *state.Table) *ApplyContext {
	return &ApplyContext{
		Context:    ctx,
		Env:        env,
		Sender:     sender,
		Table:      table,
		Listings:   NewListingStore(table, e.codec),
		Buckets:    NewBucketStore(table, e.codec),
		ListingIDs: ids.NewRegistry(table, ids.KindListing, e.cfg.MaxID),
		BucketIDs:  ids.NewRegistry(table, ids.KindBucket, e.cfg.MaxID),
		Royalties:  e.royalties.View(table),
		engine:     e,
	}
}

// loadFeeState reads the fee currency state, starting a cycle at the
// current time if none exists yet.
func loadFeeState(table *state.Table, e *Engine, now int64) (*fee.DenomState, bool, error) {
	data, err := table.Read(keyFeeState)
	if err != nil {
		return nil, false, generic("read fee state: %v", err)
	}
	if data == nil {
		s, err := fee.NewDenomState(e.cfg.FeeDenomA, e.cfg.FeeDenomB, now)
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	}
	var s fee.DenomState
	if err := e.codec.Unmarshal(data, &s); err != nil {
		return nil, false, generic("decode fee state: %v", err)
	}
	return &s, false, nil
}

// cycleFee flips the active fee currency when a full period has passed.
func (ac *ApplyContext) cycleFee() error {
	s, created, err := loadFeeState(ac.Table, ac.engine, ac.Env.Now)
	if err != nil {
		return err
	}
	flipped := s.CycleEvery(ac.Env.Now, ac.engine.cfg.FeeCyclePeriod)
	ac.feeState = s
	if !created && !flipped {
		return nil
	}
	data, err := ac.engine.codec.Marshal(s)
	if err != nil {
		return generic("encode fee state: %v", err)
	}
	if err := ac.Table.Put(keyFeeState, data); err != nil {
		return generic("write fee state: %v", err)
	}
	if flipped {
		ac.Result.addAttribute("fee_denom_cycled", s.Active)
	}
	return nil
}

// ActiveFeeDenom is the fee currency in effect for this operation.
func (ac *ApplyContext) ActiveFeeDenom() string {
	return ac.feeState.Active
}

// authorize fails unless the sender is want.
func (ac *ApplyContext) authorize(want, what string) error {
	if ac.Sender != want {
		return fmt.Errorf("%w: sender is not the %s", ErrUnauthorized, what)
	}
	return nil
}

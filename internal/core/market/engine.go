package market

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/contracts"
	"github.com/LeJamon/goMarketd/internal/core/fee"
	"github.com/LeJamon/goMarketd/internal/core/ids"
	"github.com/LeJamon/goMarketd/internal/core/royalty"
	"github.com/LeJamon/goMarketd/internal/core/state"
	"github.com/LeJamon/goMarketd/internal/storage/codec"
	"github.com/LeJamon/goMarketd/internal/storage/database"
)

// Config holds the market parameters.
type Config struct {
	FeeDenomA string
	FeeDenomB string

	// FeeCyclePeriod is the number of seconds between fee currency flips.
	FeeCyclePeriod int64

	// MaxID is the sanity bound on listing and bucket ids.
	MaxID uint64

	// RoyaltyCapBps caps the summed royalty rate of one settlement side.
	RoyaltyCapBps uint32

	// RequireFinalize makes finalization a precondition of buying.
	RequireFinalize bool
}

// DefaultConfig returns the default market parameters.
func DefaultConfig() Config {
	return Config{
		FeeDenomA:      "ujuno",
		FeeDenomB:      "uatom",
		FeeCyclePeriod: fee.CyclePeriod,
		MaxID:          ids.DefaultMaxID,
		RoyaltyCapBps:  asset.DefaultRoyaltyCapBps,
	}
}

// Observer is notified of every committed operation, in commit order.
type Observer interface {
	Observe(ctx context.Context, result *Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, result *Result)

func (f ObserverFunc) Observe(ctx context.Context, result *Result) { f(ctx, result) }

// Deps are the collaborators of an Engine.
type Deps struct {
	DB        database.DB
	Codec     *codec.Codec
	Inspector contracts.Inspector
	Sink      fee.Sink

	// Royalties defaults to a registry without cache over Inspector.
	Royalties *royalty.Registry
	Logger    *zap.Logger
}

// Engine runs market operations. Operations are serialized: each one runs
// to completion inside its own state table, and only a fully successful
// operation is committed.
type Engine struct {
	mu sync.Mutex

	cfg       Config
	db        database.DB
	codec     *codec.Codec
	inspector contracts.Inspector
	sink      fee.Sink
	royalties *royalty.Registry
	logger    *zap.Logger

	observers []Observer
}

// NewEngine creates an engine.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("market engine requires a database")
	}
	if deps.Inspector == nil {
		return nil, fmt.Errorf("market engine requires a contract inspector")
	}
	if deps.Sink == nil {
		return nil, fmt.Errorf("market engine requires a fee sink")
	}
	if _, err := fee.NewDenomState(cfg.FeeDenomA, cfg.FeeDenomB, 0); err != nil {
		return nil, err
	}
	if cfg.FeeCyclePeriod <= 0 {
		cfg.FeeCyclePeriod = fee.CyclePeriod
	}
	if cfg.RoyaltyCapBps == 0 {
		cfg.RoyaltyCapBps = asset.DefaultRoyaltyCapBps
	}
	if cfg.MaxID == 0 {
		cfg.MaxID = ids.DefaultMaxID
	}

	c := deps.Codec
	if c == nil {
		c = codec.MustNew("none")
	}
	royalties := deps.Royalties
	if royalties == nil {
		royalties = royalty.NewRegistry(deps.Inspector, c, nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.L()
	}

	return &Engine{
		cfg:       cfg,
		db:        deps.DB,
		codec:     c,
		inspector: deps.Inspector,
		sink:      deps.Sink,
		royalties: royalties,
		logger:    logger.With(zap.String("component", "market")),
	}, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Subscribe registers an observer of committed operations.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

type operation func(ac *ApplyContext) error

// apply runs op in a fresh state table and commits it only if op succeeds.
// The fee currency is cycled first, as part of the same table.
func (e *Engine) apply(ctx context.Context, env Env, action, sender string, op operation) (*Result, error) {
	if env.Now <= 0 {
		return nil, generic("invalid env time %d", env.Now)
	}
	if sender == "" || len(sender) > MaxAddressLength {
		return nil, fmt.Errorf("%w: invalid sender address", ErrUnauthorized)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	table := state.NewTable(ctx, e.db)
	ac := e.newApplyContext(ctx, env, sender, table)
	ac.Result = newResult(action, sender)
	ac.Result.Env = env

	log := e.logger.With(zap.String("action", action), zap.String("sender", sender))

	if err := ac.cycleFee(); err != nil {
		log.Error("fee cycle failed", zap.Error(err))
		return nil, err
	}
	if err := op(ac); err != nil {
		log.Info("operation rejected", zap.Error(err))
		return nil, err
	}
	if err := table.Commit(); err != nil {
		log.Error("commit failed", zap.Error(err))
		return nil, generic("commit: %v", err)
	}
	e.royalties.Invalidate(ac.Royalties.Touched()...)

	log.Debug("operation committed",
		zap.Uint64("listing_id", ac.Result.ListingID),
		zap.Uint64("bucket_id", ac.Result.BucketID),
		zap.Int("instructions", len(ac.Result.Instructions)))

	for _, o := range e.observers {
		o.Observe(ctx, ac.Result)
	}
	return ac.Result, nil
}

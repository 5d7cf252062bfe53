package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goMarketd/internal/config"
	"github.com/LeJamon/goMarketd/internal/core/clock"
	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/core/royalty"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
	"github.com/LeJamon/goMarketd/internal/storage/codec"
	"github.com/LeJamon/goMarketd/internal/storage/database"
	"github.com/LeJamon/goMarketd/internal/storage/history"

	// storage backends register themselves
	_ "github.com/LeJamon/goMarketd/internal/storage/database/leveldb"
	_ "github.com/LeJamon/goMarketd/internal/storage/database/pebble"
)

// marketDB is the name of the database holding market state.
const marketDB = "market"

// node owns every long-lived component of the daemon.
type node struct {
	logger   *zap.Logger
	storage  database.Manager
	engine   *market.Engine
	clock    *clock.BlockClock
	history  *history.Store
	recorder *history.Recorder
	royalty  *royalty.Cache
}

// openNode opens storage and builds the market engine described by cfg.
// The caller must Close the node.
func openNode(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *node, err error) {
	n := &node{logger: logger}
	defer func() {
		if err != nil {
			n.Close()
		}
	}()

	n.storage, err = database.NewManager(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	db, err := n.storage.OpenDB(marketDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open market database: %w", err)
	}
	c, err := codec.New(cfg.Storage.Compression)
	if err != nil {
		return nil, err
	}

	inspector := cfg.Contracts.Inspector()
	n.royalty, err = royalty.NewCache(cfg.Market.RoyaltyCacheSize)
	if err != nil {
		return nil, err
	}
	n.engine, err = market.NewEngine(cfg.Market.EngineConfig(), market.Deps{
		DB:        db,
		Codec:     c,
		Inspector: inspector,
		Sink:      cfg.Market.Sink(),
		Royalties: royalty.NewRegistry(inspector, c, n.royalty),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	if cfg.History.Enabled {
		n.history, err = history.Open(ctx, cfg.History.StoreConfig())
		if err != nil {
			return nil, err
		}
		n.recorder = history.NewRecorder(n.history, cfg.History.QueueSize, logger)
		n.engine.Subscribe(n.recorder)
	}

	n.clock = clock.NewBlockClock(
		time.Unix(cfg.Market.GenesisTime, 0),
		time.Duration(cfg.Market.BlockTimeSeconds)*time.Second,
	)

	logger.Info("market opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.Storage.Path),
		zap.Bool("history", cfg.History.Enabled),
		zap.Int("tokens", len(cfg.Contracts.Tokens)),
		zap.Int("nfts", len(cfg.Contracts.Nfts)))
	return n, nil
}

// services returns the handler dependencies.
func (n *node) services() *rpc_types.ServiceContainer {
	services := &rpc_types.ServiceContainer{
		Market: n.engine,
		Clock:  n.clock,
	}
	if n.history != nil {
		services.History = n.history
	}
	return services
}

// runRecorder mirrors sales until ctx is done. It returns immediately when
// the history is disabled.
func (n *node) runRecorder(ctx context.Context) error {
	if n.recorder == nil {
		return nil
	}
	return n.recorder.Run(ctx)
}

// Close releases the history store and the storage.
func (n *node) Close() error {
	var firstErr error
	if n.history != nil {
		if err := n.history.Close(); err != nil {
			firstErr = err
		}
	}
	if n.storage != nil {
		if err := n.storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if n.recorder != nil && n.recorder.Dropped() > 0 {
		n.logger.Warn("sales dropped from history", zap.Uint64("count", n.recorder.Dropped()))
	}
	if n.royalty != nil {
		hits, misses := n.royalty.Stats()
		n.logger.Debug("royalty cache", zap.Uint64("hits", hits), zap.Uint64("misses", misses))
	}
	return firstErr
}

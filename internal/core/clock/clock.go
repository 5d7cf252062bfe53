// Package clock supplies the time and height of each market invocation.
package clock

import (
	"sync"
	"time"

	"github.com/LeJamon/goMarketd/internal/core/market"
)

// Clock returns the environment for the next invocation.
type Clock interface {
	Env() market.Env
}

// BlockClock derives a block height from wall time: height 1 starts at
// genesis and a new block begins every blockTime. Heights never decrease,
// even when the wall clock steps backwards.
type BlockClock struct {
	genesis   time.Time
	blockTime time.Duration
	now       func() time.Time

	mu   sync.Mutex
	last market.Env
}

// NewBlockClock creates a block clock starting at genesis.
func NewBlockClock(genesis time.Time, blockTime time.Duration) *BlockClock {
	return newBlockClock(genesis, blockTime, time.Now)
}

func newBlockClock(genesis time.Time, blockTime time.Duration, now func() time.Time) *BlockClock {
	if blockTime <= 0 {
		blockTime = 6 * time.Second
	}
	return &BlockClock{genesis: genesis, blockTime: blockTime, now: now}
}

// Env implements Clock.
func (c *BlockClock) Env() market.Env {
	t := c.now()
	env := market.Env{Now: t.Unix(), Height: 1}
	if elapsed := t.Sub(c.genesis); elapsed > 0 {
		env.Height = uint64(elapsed/c.blockTime) + 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if env.Now < c.last.Now {
		env.Now = c.last.Now
	}
	if env.Height < c.last.Height {
		env.Height = c.last.Height
	}
	c.last = env
	return env
}

// Fixed always returns the same environment.
type Fixed market.Env

// Env implements Clock.
func (f Fixed) Env() market.Env {
	return market.Env(f)
}

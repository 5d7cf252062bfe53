package rpc

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

// Broadcaster delivers encoded events to subscribers
type Broadcaster interface {
	Broadcast(data []byte)
}

// Publisher turns committed market operations into stream events. It is
// registered as an engine observer.
type Publisher struct {
	out    Broadcaster
	logger *zap.Logger
}

// NewPublisher creates a publisher writing to out
func NewPublisher(out Broadcaster, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.L()
	}
	return &Publisher{out: out, logger: logger}
}

// Observe implements market.Observer
func (p *Publisher) Observe(_ context.Context, result *market.Result) {
	if result == nil || p.out == nil {
		return
	}
	data, err := json.Marshal(rpc_types.Event{
		Type:   "market_event",
		ID:     uuid.NewString(),
		Result: result,
	})
	if err != nil {
		p.logger.Error("failed to marshal market event", zap.String("action", result.Action), zap.Error(err))
		return
	}
	p.out.Broadcast(data)
}

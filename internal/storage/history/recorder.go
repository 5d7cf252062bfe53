package history

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/LeJamon/goMarketd/internal/core/market"
)

// Sink persists sales.
type Sink interface {
	RecordSale(ctx context.Context, sale *Sale) error
}

// Recorder mirrors committed purchases into a Sink. Observe never blocks the
// engine: sales are queued and written by Run. When the queue is full the
// sale is dropped and logged.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
	queue  chan *Sale

	mu      sync.Mutex
	dropped uint64
}

// NewRecorder creates a recorder with a queue of the given size.
func NewRecorder(sink Sink, queueSize int, logger *zap.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Recorder{
		sink:   sink,
		logger: logger.With(zap.String("component", "history")),
		queue:  make(chan *Sale, queueSize),
	}
}

// Observe implements market.Observer.
func (r *Recorder) Observe(_ context.Context, result *market.Result) {
	sale, ok := SaleFromResult(result)
	if !ok {
		return
	}
	select {
	case r.queue <- sale:
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		r.logger.Warn("history queue full, dropping sale", zap.Uint64("listing_id", sale.ListingID))
	}
}

// Dropped returns the number of sales discarded because the queue was full.
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Run writes queued sales until ctx is done, then drains what is left.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case sale := <-r.queue:
			r.write(ctx, sale)
		case <-ctx.Done():
			r.drain()
			return nil
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case sale := <-r.queue:
			r.write(context.Background(), sale)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, sale *Sale) {
	if err := r.sink.RecordSale(ctx, sale); err != nil {
		r.logger.Error("failed to record sale",
			zap.Uint64("listing_id", sale.ListingID),
			zap.Error(err))
	}
}

// SaleFromResult extracts a sale from a committed buy_listing result.
func SaleFromResult(result *market.Result) (*Sale, bool) {
	if result == nil || result.Action != "buy_listing" {
		return nil, false
	}
	sellerBps, _ := strconv.ParseUint(result.Attribute(market.AttrSellerRoyaltyBps), 10, 32)
	buyerBps, _ := strconv.ParseUint(result.Attribute(market.AttrBuyerRoyaltyBps), 10, 32)
	return &Sale{
		ListingID:        result.ListingID,
		BucketID:         result.BucketID,
		Seller:           result.Attribute(market.AttrSeller),
		Buyer:            result.Attribute(market.AttrBuyer),
		FeeDenom:         result.Attribute(market.AttrFeeDenom),
		ListingFee:       result.Attribute(market.AttrListingFee),
		BucketFee:        result.Attribute(market.AttrBucketFee),
		SellerRoyaltyBps: uint32(sellerBps),
		BuyerRoyaltyBps:  uint32(buyerBps),
		Timestamp:        result.Env.Now,
		Height:           result.Env.Height,
	}, true
}

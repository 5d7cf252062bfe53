package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LeJamon/goMarketd/internal/core/market"
)

type memSink struct {
	mu    sync.Mutex
	sales []*Sale
	err   error
}

func (m *memSink) RecordSale(_ context.Context, sale *Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sales = append(m.sales, sale)
	return nil
}

func (m *memSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

func buyResult(listingID uint64) *market.Result {
	return &market.Result{
		Action:    "buy_listing",
		Sender:    "bob",
		ListingID: listingID,
		BucketID:  7,
		Attributes: []market.Attribute{
			{Key: market.AttrSeller, Value: "alice"},
			{Key: market.AttrBuyer, Value: "bob"},
			{Key: market.AttrFeeDenom, Value: "ujuno"},
			{Key: market.AttrListingFee, Value: "5ujuno"},
			{Key: market.AttrBucketFee, Value: ""},
			{Key: market.AttrSellerRoyaltyBps, Value: "150"},
			{Key: market.AttrBuyerRoyaltyBps, Value: "0"},
		},
		Env: market.Env{Now: 1_700_000_000, Height: 12},
	}
}

func TestSaleFromResult(t *testing.T) {
	sale, ok := SaleFromResult(buyResult(3))
	require.True(t, ok)
	assert.Equal(t, &Sale{
		ListingID:        3,
		BucketID:         7,
		Seller:           "alice",
		Buyer:            "bob",
		FeeDenom:         "ujuno",
		ListingFee:       "5ujuno",
		SellerRoyaltyBps: 150,
		Timestamp:        1_700_000_000,
		Height:           12,
	}, sale)

	_, ok = SaleFromResult(&market.Result{Action: "create_listing"})
	assert.False(t, ok)
	_, ok = SaleFromResult(nil)
	assert.False(t, ok)
}

func TestRecorderWritesQueuedSales(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(sink, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	rec.Observe(ctx, buyResult(1))
	rec.Observe(ctx, &market.Result{Action: "create_bucket"})
	rec.Observe(ctx, buyResult(2))

	assert.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRecorderDropsWhenFull(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(sink, 1, zap.NewNop())

	rec.Observe(context.Background(), buyResult(1))
	rec.Observe(context.Background(), buyResult(2))
	assert.Equal(t, uint64(1), rec.Dropped())

	// a cancelled run still drains the queue
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, rec.Run(ctx))
	assert.Equal(t, 1, sink.count())
}

func TestRecorderSurvivesSinkErrors(t *testing.T) {
	sink := &memSink{err: errors.New("disk full")}
	rec := NewRecorder(sink, 2, zap.NewNop())
	rec.Observe(context.Background(), buyResult(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, rec.Run(ctx))
}

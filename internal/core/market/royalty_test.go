package market

import (
	"context"
	"sync/atomic"

	"github.com/LeJamon/goMarketd/internal/core/royalty"
	"github.com/LeJamon/goMarketd/internal/storage/database"
)

// pausingDB holds the first read of key, after the value has been read,
// until release is closed.
type pausingDB struct {
	database.DB
	key     string
	armed   atomic.Bool
	reached chan struct{}
	release chan struct{}
}

func (d *pausingDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	data, err := d.DB.Read(ctx, key)
	if string(key) == d.key && d.armed.CompareAndSwap(true, false) {
		close(d.reached)
		<-d.release
	}
	return data, err
}

func (s *EngineSuite) TestRoyaltyQueryRacingUpdateLeavesCacheFresh() {
	db := &pausingDB{
		DB:      s.db,
		key:     royalty.Key("nft_x"),
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}
	s.db = db
	s.rebuild()

	s.registerRoyalty("nft_x", "artist_x", 100)
	listingID, bucketID := s.tradeFixture()

	type queried struct {
		reg *royalty.Registration
		err error
	}
	done := make(chan queried, 1)
	db.armed.Store(true)
	go func() {
		reg, err := s.engine.Royalty(s.ctx, "nft_x")
		done <- queried{reg, err}
	}()
	<-db.reached

	later := t0 + 6*int64(royalty.UpdateCooldown)
	_, err := s.engine.UpdateRoyalty(s.ctx, env(later), "minter_nft_x", RoyaltyMsg{
		Collection: "nft_x",
		Payout:     "artist_x2",
		Bps:        250,
	})
	s.Require().NoError(err)

	close(db.release)
	q := <-done
	s.Require().NoError(q.err)
	s.Require().NotNil(q.reg)
	s.Equal(uint32(100), q.reg.Bps, "the query saw the state before the update")

	reg, err := s.engine.Royalty(s.ctx, "nft_x")
	s.Require().NoError(err)
	s.Equal(uint32(250), reg.Bps)

	res, err := s.engine.BuyListing(s.ctx, env(later), buyer, listingID, bucketID)
	s.Require().NoError(err)
	s.Equal("250", res.Attribute(AttrSellerRoyaltyBps))
	s.Require().Len(res.Instructions, 1)
	s.Equal("artist_x2", res.Instructions[0].Recipient)
	s.Equal("500", res.Instructions[0].Amount.String())
}

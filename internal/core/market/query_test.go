package market

import (
	"github.com/LeJamon/goMarketd/internal/core/asset"
)

func (s *EngineSuite) TestListingsByOwnerPagination() {
	for i := 0; i < PageSize+5; i++ {
		s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", uint64(i+1))), nil)
	}
	s.createListing(t0, "seller2", bundle(asset.NewCoin("cur_a", 1)), nil)

	page, err := s.engine.ListingsByOwner(s.ctx, seller, 0)
	s.Require().NoError(err)
	s.Require().Len(page, PageSize)
	s.Equal(uint64(1), page[0].ID)
	s.Equal(uint64(PageSize), page[PageSize-1].ID)

	page, err = s.engine.ListingsByOwner(s.ctx, seller, 1)
	s.Require().NoError(err)
	s.Require().Len(page, 5)
	s.Equal(uint64(PageSize+1), page[0].ID)

	page, err = s.engine.ListingsByOwner(s.ctx, seller, 2)
	s.Require().NoError(err)
	s.Empty(page)

	// an owner whose address extends another's does not see its listings
	page, err = s.engine.ListingsByOwner(s.ctx, "seller2", 0)
	s.Require().NoError(err)
	s.Len(page, 1)

	_, err = s.engine.ListingsByOwner(s.ctx, seller, -1)
	s.Error(err)
}

func (s *EngineSuite) TestBucketsByOwner() {
	s.createBucket(t0, buyer, bundle(asset.NewCoin("cur_a", 1)))
	s.createBucket(t0, buyer, bundle(asset.NewCoin("cur_a", 2)))
	s.createBucket(t0, other, bundle(asset.NewCoin("cur_a", 3)))

	page, err := s.engine.BucketsByOwner(s.ctx, buyer, 0)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("2", page[1].Funds.CoinAmount("cur_a").String())
}

func (s *EngineSuite) TestListingsForMarket() {
	ask := bundle(asset.NewToken("token_b", 1))
	old := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 1)), ask)
	recent := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 2)), ask)
	sold := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 3)), ask)
	expired := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), ask)
	s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 4)), ask) // never finalized

	_, err := s.engine.FinalizeListing(s.ctx, env(t0), seller, old, MaxTTL)
	s.Require().NoError(err)
	now := t0 + MarketWindow + 100
	// finalized inside the window but already past its expiry
	_, err = s.engine.FinalizeListing(s.ctx, env(now-MinTTL-60), seller, expired, MinTTL)
	s.Require().NoError(err)
	_, err = s.engine.FinalizeListing(s.ctx, env(now-50), seller, recent, MinTTL)
	s.Require().NoError(err)
	_, err = s.engine.FinalizeListing(s.ctx, env(now-40), seller, sold, MinTTL)
	s.Require().NoError(err)

	bucketID := s.createBucket(now-30, buyer, bundle(asset.NewToken("token_b", 1)))
	_, err = s.engine.BuyListing(s.ctx, env(now-30), buyer, sold, bucketID)
	s.Require().NoError(err)

	market, err := s.engine.ListingsForMarket(s.ctx, now, 0)
	s.Require().NoError(err)
	s.Require().Len(market, 1)
	s.Equal(recent, market[0].ID)

	market, err = s.engine.ListingsForMarket(s.ctx, now, 1)
	s.Require().NoError(err)
	s.Empty(market)
}

func (s *EngineSuite) TestMarketPagesSkipClosedListings() {
	ask := bundle(asset.NewToken("token_b", 1))
	var finalized []uint64
	for i := 0; i < PageSize+2; i++ {
		id := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", uint64(i+1))), ask)
		_, err := s.engine.FinalizeListing(s.ctx, env(t0+int64(i)), seller, id, MaxTTL)
		s.Require().NoError(err)
		finalized = append(finalized, id)
	}

	// buying the first listing leaves PageSize+1 on the market
	bucketID := s.createBucket(t0, buyer, bundle(asset.NewToken("token_b", 1)))
	_, err := s.engine.BuyListing(s.ctx, env(t0+100), buyer, finalized[0], bucketID)
	s.Require().NoError(err)

	first, err := s.engine.ListingsForMarket(s.ctx, t0+100, 0)
	s.Require().NoError(err)
	s.Require().Len(first, PageSize)
	s.Equal(finalized[1], first[0].ID)

	second, err := s.engine.ListingsForMarket(s.ctx, t0+100, 1)
	s.Require().NoError(err)
	s.Require().Len(second, 1)
	s.Equal(finalized[PageSize+1], second[0].ID)
}

func (s *EngineSuite) TestRoyaltyQuery() {
	reg, err := s.engine.Royalty(s.ctx, "nft_x")
	s.Require().NoError(err)
	s.Nil(reg)

	s.registerRoyalty("nft_x", "artist_x", 150)
	reg, err = s.engine.Royalty(s.ctx, "nft_x")
	s.Require().NoError(err)
	s.Require().NotNil(reg)
	s.Equal(uint32(150), reg.Bps)
	s.Equal(uint64(1), reg.LastUpdated)
}

package market

import (
	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/ids"
)

func (s *EngineSuite) TestCreateListing() {
	ask := bundle(asset.NewToken("token_b", 20))
	id := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5), nft("nft_x", "1")), ask)
	s.Equal(uint64(1), id)

	l, err := s.engine.Listing(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(seller, l.Creator)
	s.Equal(StatusOpen, l.Status)
	s.True(l.Ask.MultisetEquals(ask))
	s.Equal("5", l.ForSale.CoinAmount("cur_a").String())
	s.False(l.IsClaimed())

	second := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 1)), nil)
	s.Equal(uint64(2), second)
}

func (s *EngineSuite) TestCreateListingRejectsInvalidAsk() {
	_, err := s.engine.CreateListing(s.ctx, env(t0), seller, CreateListingMsg{
		Ask: bundle(asset.NewToken("token_b", 0)),
	}, bundle(asset.NewCoin("cur_a", 5)))
	s.ErrorIs(err, asset.ErrInvalidBalance)
}

func (s *EngineSuite) TestIdsAreNeverReused() {
	first := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), nil)
	_, err := s.engine.RemoveListing(s.ctx, env(t0), seller, first)
	s.Require().NoError(err)

	// explicit reuse of a removed id fails
	_, err = s.engine.CreateListing(s.ctx, env(t0), seller, CreateListingMsg{ID: first}, bundle(asset.NewCoin("cur_a", 5)))
	s.ErrorIs(err, ErrIdAlreadyExists)

	// so does reuse by another account
	_, err = s.engine.CreateListing(s.ctx, env(t0), other, CreateListingMsg{ID: first}, bundle(asset.NewCoin("cur_a", 5)))
	s.ErrorIs(err, ErrIdAlreadyExists)

	next := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), nil)
	s.Equal(first+1, next)

	// explicit ids ahead of the counter are accepted once
	res, err := s.engine.CreateListing(s.ctx, env(t0), seller, CreateListingMsg{ID: 10}, bundle(asset.NewCoin("cur_a", 5)))
	s.Require().NoError(err)
	s.Equal(uint64(10), res.ListingID)
	_, err = s.engine.CreateListing(s.ctx, env(t0), seller, CreateListingMsg{ID: 10}, bundle(asset.NewCoin("cur_a", 5)))
	s.ErrorIs(err, ErrIdAlreadyExists)
	s.Equal(uint64(3), s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), nil))

	// bucket ids live in their own space
	s.Equal(uint64(1), s.createBucket(t0, buyer, bundle(asset.NewCoin("cur_a", 5))))
}

func (s *EngineSuite) TestExplicitMaxIdLeavesAutoAllocationWorking() {
	res, err := s.engine.CreateListing(s.ctx, env(t0), other, CreateListingMsg{ID: ids.DefaultMaxID}, bundle(asset.NewCoin("cur_a", 1)))
	s.Require().NoError(err)
	s.Equal(ids.DefaultMaxID, res.ListingID)
	bres, err := s.engine.CreateBucket(s.ctx, env(t0), other, CreateBucketMsg{ID: ids.DefaultMaxID}, bundle(asset.NewCoin("cur_a", 1)))
	s.Require().NoError(err)
	s.Equal(ids.DefaultMaxID, bres.BucketID)

	s.Equal(uint64(1), s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), nil))
	s.Equal(uint64(1), s.createBucket(t0, buyer, bundle(asset.NewCoin("cur_a", 5))))
}

func (s *EngineSuite) TestIdAboveSanityBound() {
	s.cfg.MaxID = 5
	s.rebuild()
	_, err := s.engine.CreateListing(s.ctx, env(t0), seller, CreateListingMsg{ID: 6}, bundle(asset.NewCoin("cur_a", 5)))
	s.ErrorIs(err, ErrIdAlreadyExists)
}

func (s *EngineSuite) TestAddToListing() {
	id := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), nil)

	_, err := s.engine.AddToListing(s.ctx, env(t0), seller, id, bundle(asset.NewCoin("cur_a", 7), asset.NewToken("token_a", 3)))
	s.Require().NoError(err)
	l, err := s.engine.Listing(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("12", l.ForSale.CoinAmount("cur_a").String())
	s.Equal("3", l.ForSale.TokenAmountOf("token_a").String())

	_, err = s.engine.AddToListing(s.ctx, env(t0), other, id, bundle(asset.NewCoin("cur_a", 1)))
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.engine.AddToListing(s.ctx, env(t0), seller, 99, bundle(asset.NewCoin("cur_a", 1)))
	s.True(IsNotFound(err))

	_, err = s.engine.AddToListing(s.ctx, env(t0), seller, id, bundle(asset.NewCoin("cur_a", 0)))
	s.ErrorIs(err, asset.ErrInvalidBalance)
}

func (s *EngineSuite) TestAddToListingCapacity() {
	funds := asset.NewBundle()
	for i := 0; i < asset.MaxAssets; i++ {
		funds.AddNft(nft("nft_x", string(rune('a'+i))))
	}
	id := s.createListing(t0, seller, funds, nil)

	_, err := s.engine.AddToListing(s.ctx, env(t0), seller, id, bundle(asset.NewCoin("cur_a", 1)))
	s.ErrorIs(err, asset.ErrInvalidBalance)

	// an NFT already held cannot be added twice
	_, err = s.engine.AddToListing(s.ctx, env(t0), seller, id, bundle(nft("nft_x", "a")))
	s.ErrorIs(err, asset.ErrInvalidBalance)
}

func (s *EngineSuite) TestChangeAsk() {
	id := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), bundle(asset.NewToken("token_b", 1)))

	newAsk := bundle(asset.NewToken("token_b", 20), nft("nft_y", "3"))
	_, err := s.engine.ChangeAsk(s.ctx, env(t0), seller, id, newAsk)
	s.Require().NoError(err)
	l, err := s.engine.Listing(s.ctx, id)
	s.Require().NoError(err)
	s.True(l.Ask.MultisetEquals(newAsk))

	_, err = s.engine.ChangeAsk(s.ctx, env(t0), other, id, newAsk)
	s.ErrorIs(err, ErrUnauthorized)
	_, err = s.engine.ChangeAsk(s.ctx, env(t0), seller, id, asset.NewBundle())
	s.ErrorIs(err, asset.ErrInvalidBalance)
}

func (s *EngineSuite) TestFinalizeListing() {
	id := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), bundle(asset.NewToken("token_b", 1)))

	for _, ttl := range []int64{0, MinTTL - 1, MaxTTL + 1} {
		_, err := s.engine.FinalizeListing(s.ctx, env(t0), seller, id, ttl)
		s.ErrorIs(err, ErrInvalidTTL, "ttl %d", ttl)
	}
	_, err := s.engine.FinalizeListing(s.ctx, env(t0), other, id, MinTTL)
	s.ErrorIs(err, ErrUnauthorized)

	res, err := s.engine.FinalizeListing(s.ctx, env(t0+5), seller, id, MinTTL)
	s.Require().NoError(err)
	s.Equal("1700000605", res.Attribute("expires_at"))

	l, err := s.engine.Listing(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(StatusFinalizedReady, l.Status)
	s.Equal(t0+5, l.FinalizedAt)
	s.Equal(t0+5+MinTTL, l.ExpiresAt)

	_, err = s.engine.FinalizeListing(s.ctx, env(t0+10), seller, id, MaxTTL)
	s.ErrorIs(err, ErrAlreadyFinalized)
	_, err = s.engine.AddToListing(s.ctx, env(t0+10), seller, id, bundle(asset.NewCoin("cur_a", 1)))
	s.ErrorIs(err, ErrAlreadyFinalized)
	_, err = s.engine.ChangeAsk(s.ctx, env(t0+10), seller, id, bundle(asset.NewCoin("cur_b", 1)))
	s.ErrorIs(err, ErrAlreadyFinalized)
	_, err = s.engine.SetWhitelist(s.ctx, env(t0+10), seller, id, buyer)
	s.ErrorIs(err, ErrAlreadyFinalized)
}

func (s *EngineSuite) TestRemoveListing() {
	forSale := bundle(asset.NewCoin("cur_a", 5), asset.NewToken("token_a", 2), nft("nft_x", "1"))
	id := s.createListing(t0, seller, forSale, nil)

	_, err := s.engine.RemoveListing(s.ctx, env(t0), other, id)
	s.ErrorIs(err, ErrUnauthorized)

	res, err := s.engine.RemoveListing(s.ctx, env(t0), seller, id)
	s.Require().NoError(err)
	s.Require().Len(res.Instructions, 3)
	s.Equal(asset.KindBankSend, res.Instructions[0].Kind)
	s.Equal(seller, res.Instructions[0].Recipient)
	s.Equal(asset.KindTokenTransfer, res.Instructions[1].Kind)
	s.Equal(asset.KindNftTransfer, res.Instructions[2].Kind)
	s.Equal("1", res.Instructions[2].TokenID)

	_, err = s.engine.RemoveListing(s.ctx, env(t0), seller, id)
	s.True(IsNotFound(err))

	owned, err := s.engine.ListingsByOwner(s.ctx, seller, 0)
	s.Require().NoError(err)
	s.Empty(owned)
}

func (s *EngineSuite) TestRemoveFinalizedListingOnlyAfterExpiry() {
	id := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), bundle(asset.NewToken("token_b", 1)))
	_, err := s.engine.FinalizeListing(s.ctx, env(t0), seller, id, MinTTL)
	s.Require().NoError(err)

	_, err = s.engine.RemoveListing(s.ctx, env(t0+MinTTL-1), seller, id)
	s.ErrorIs(err, ErrNotExpired)

	_, err = s.engine.RemoveListing(s.ctx, env(t0+MinTTL), seller, id)
	s.Require().NoError(err)

	market, err := s.engine.ListingsForMarket(s.ctx, t0+MinTTL, 0)
	s.Require().NoError(err)
	s.Empty(market, "finalize index entry must go with the listing")
}

func (s *EngineSuite) TestSetWhitelist() {
	id := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 5)), nil)

	_, err := s.engine.SetWhitelist(s.ctx, env(t0), other, id, other)
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.engine.SetWhitelist(s.ctx, env(t0), seller, id, buyer)
	s.Require().NoError(err)
	l, err := s.engine.Listing(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(buyer, l.WhitelistedBuyer)

	_, err = s.engine.SetWhitelist(s.ctx, env(t0), seller, id, "")
	s.Require().NoError(err)
	l, err = s.engine.Listing(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(l.WhitelistedBuyer)
}

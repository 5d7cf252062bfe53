package market

import (
	"errors"

	sdkmath "cosmossdk.io/math"

	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/fee"
)

// tradeFixture lists {5_000_000 cur_a, 10_000 token_a, nft_x#1} against an
// ask of {20_000 token_b, nft_y#3} and funds a matching bucket.
func (s *EngineSuite) tradeFixture() (listingID, bucketID uint64) {
	forSale := bundle(asset.NewCoin("cur_a", 5_000_000), asset.NewToken("token_a", 10_000), nft("nft_x", "1"))
	ask := bundle(asset.NewToken("token_b", 20_000), nft("nft_y", "3"))
	listingID = s.createListing(t0, seller, forSale, ask)
	bucketID = s.createBucket(t0, buyer, bundle(nft("nft_y", "3"), asset.NewToken("token_b", 20_000)))
	return listingID, bucketID
}

func (s *EngineSuite) TestBuyScenario() {
	s.registerRoyalty("nft_x", "artist_x", 100)
	listingID, bucketID := s.tradeFixture()

	res, err := s.engine.BuyListing(s.ctx, env(t0+60), buyer, listingID, bucketID)
	s.Require().NoError(err)

	// seller-side collection nft_x takes 1% of the proceeds
	s.Require().Len(res.Instructions, 1)
	royalty := res.Instructions[0]
	s.Equal(asset.KindTokenTransfer, royalty.Kind)
	s.Equal("artist_x", royalty.Recipient)
	s.Equal("token_b", royalty.Contract)
	s.Equal("200", royalty.Amount.String())

	s.Equal("100", res.Attribute(AttrSellerRoyaltyBps))
	s.Equal("0", res.Attribute(AttrBuyerRoyaltyBps))
	s.Equal("25000cur_a", res.Attribute(AttrListingFee))
	s.Equal("", res.Attribute(AttrBucketFee))
	s.Equal(seller, res.Attribute(AttrSeller))
	s.Equal(buyer, res.Attribute(AttrBuyer))

	// the listing now belongs to the buyer as claimant
	l, err := s.engine.Listing(s.ctx, listingID)
	s.Require().NoError(err)
	s.Equal(buyer, l.Creator)
	s.Equal(buyer, l.Claimant)
	s.Equal(StatusClosed, l.Status)
	s.Equal("4975000", l.ForSale.CoinAmount("cur_a").String())
	s.Equal("10000", l.ForSale.TokenAmountOf("token_a").String())
	s.Require().NotNil(l.FeeAmount)
	s.Equal("25000", l.FeeAmount.Amount.String())

	sellerListings, err := s.engine.ListingsByOwner(s.ctx, seller, 0)
	s.Require().NoError(err)
	s.Empty(sellerListings)
	buyerListings, err := s.engine.ListingsByOwner(s.ctx, buyer, 0)
	s.Require().NoError(err)
	s.Len(buyerListings, 1)

	// the bucket now belongs to the seller
	b, err := s.engine.Bucket(s.ctx, bucketID)
	s.Require().NoError(err)
	s.Equal(seller, b.Owner)
	s.True(b.Claimed)
	s.Nil(b.FeeAmount)
	s.True(b.Funds.MultisetEquals(bundle(asset.NewToken("token_b", 19_800), nft("nft_y", "3"))))

	// buyer collects the listing, fee goes to the sink
	res, err = s.engine.WithdrawPurchased(s.ctx, env(t0+120), buyer, listingID)
	s.Require().NoError(err)
	s.Require().Len(res.Instructions, 4)
	total := sdkmath.ZeroUint()
	for _, ins := range res.Instructions {
		if ins.Denom == "cur_a" {
			total = total.Add(ins.Amount)
		}
	}
	s.Equal("5000000", total.String(), "cur_a must be conserved")
	sink := res.Instructions[3]
	s.Equal(asset.KindFeeSink, sink.Kind)
	s.Equal(sinkTo, sink.Recipient)
	s.Equal("25000", sink.Amount.String())

	_, err = s.engine.WithdrawPurchased(s.ctx, env(t0+120), buyer, listingID)
	s.True(IsNotFound(err), "second withdraw must not pay twice")

	// seller collects the proceeds
	_, err = s.engine.RemoveBucket(s.ctx, env(t0+120), buyer, bucketID)
	s.ErrorIs(err, ErrUnauthorized)
	res, err = s.engine.RemoveBucket(s.ctx, env(t0+120), seller, bucketID)
	s.Require().NoError(err)
	s.Require().Len(res.Instructions, 2)
	s.Equal(seller, res.Instructions[0].Recipient)
	s.Equal("19800", res.Instructions[0].Amount.String())
	s.Equal(asset.KindNftTransfer, res.Instructions[1].Kind)

	_, err = s.engine.RemoveBucket(s.ctx, env(t0+120), seller, bucketID)
	s.True(IsNotFound(err))
}

func (s *EngineSuite) TestBuyerSideRoyalty() {
	s.registerRoyalty("nft_y", "artist_y", 250)
	listingID, bucketID := s.tradeFixture()

	res, err := s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, bucketID)
	s.Require().NoError(err)
	s.Equal("0", res.Attribute(AttrSellerRoyaltyBps))
	s.Equal("250", res.Attribute(AttrBuyerRoyaltyBps))

	// 2.5% of the post-fee listing balance goes to the buyer's collection
	s.Require().Len(res.Instructions, 2)
	s.Equal("124375", res.Instructions[0].Amount.String())
	s.Equal("cur_a", res.Instructions[0].Denom)
	s.Equal("250", res.Instructions[1].Amount.String())
	s.Equal("token_a", res.Instructions[1].Contract)

	l, err := s.engine.Listing(s.ctx, listingID)
	s.Require().NoError(err)
	s.Equal("4850625", l.ForSale.CoinAmount("cur_a").String())
	s.Equal("9750", l.ForSale.TokenAmountOf("token_a").String())
}

func (s *EngineSuite) TestBuyFeeOnBucketSide() {
	ask := bundle(asset.NewCoin("cur_a", 1_000))
	listingID := s.createListing(t0, seller, bundle(nft("nft_x", "1")), ask)
	bucketID := s.createBucket(t0, buyer, bundle(asset.NewCoin("cur_a", 1_000)))

	res, err := s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, bucketID)
	s.Require().NoError(err)
	s.Equal("5cur_a", res.Attribute(AttrBucketFee))

	res, err = s.engine.RemoveBucket(s.ctx, env(t0), seller, bucketID)
	s.Require().NoError(err)
	s.Require().Len(res.Instructions, 2)
	s.Equal("995", res.Instructions[0].Amount.String())
	s.Equal(asset.KindFeeSink, res.Instructions[1].Kind)
	s.Equal("5", res.Instructions[1].Amount.String())
}

func (s *EngineSuite) TestBuyPreconditions() {
	tests := []struct {
		name    string
		prepare func(listingID, bucketID uint64) (sender string, lid, bid uint64)
		check   func(err error)
	}{
		{
			name: "bucket missing",
			prepare: func(l, b uint64) (string, uint64, uint64) {
				return buyer, l, b + 100
			},
			check: func(err error) { s.True(IsNotFound(err)) },
		},
		{
			name: "bucket under another owner",
			prepare: func(l, b uint64) (string, uint64, uint64) {
				return other, l, b
			},
			check: func(err error) { s.True(IsNotFound(err)) },
		},
		{
			name: "listing missing",
			prepare: func(l, b uint64) (string, uint64, uint64) {
				return buyer, l + 100, b
			},
			check: func(err error) { s.True(IsNotFound(err)) },
		},
		{
			name: "ask mismatch",
			prepare: func(l, b uint64) (string, uint64, uint64) {
				_, err := s.engine.AddToBucket(s.ctx, env(t0), buyer, b, bundle(asset.NewToken("token_b", 1)))
				s.Require().NoError(err)
				return buyer, l, b
			},
			check: func(err error) { s.ErrorIs(err, ErrAskMismatch) },
		},
		{
			name: "expired",
			prepare: func(l, b uint64) (string, uint64, uint64) {
				_, err := s.engine.FinalizeListing(s.ctx, env(t0-MinTTL), seller, l, MinTTL)
				s.Require().NoError(err)
				return buyer, l, b
			},
			check: func(err error) { s.ErrorIs(err, ErrExpired) },
		},
		{
			name: "whitelist",
			prepare: func(l, b uint64) (string, uint64, uint64) {
				_, err := s.engine.SetWhitelist(s.ctx, env(t0), seller, l, other)
				s.Require().NoError(err)
				return buyer, l, b
			},
			check: func(err error) { s.ErrorIs(err, ErrUnauthorized) },
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			listingID, bucketID := s.tradeFixture()
			sender, lid, bid := tt.prepare(listingID, bucketID)

			before := s.dump()
			committed := len(s.committed)
			res, err := s.engine.BuyListing(s.ctx, env(t0), sender, lid, bid)
			s.Nil(res)
			tt.check(err)
			s.Equal(before, s.dump(), "failed buy must not change state")
			s.Len(s.committed, committed)
		})
	}
}

func (s *EngineSuite) TestBuyClaimedListingFails() {
	listingID, bucketID := s.tradeFixture()
	_, err := s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, bucketID)
	s.Require().NoError(err)

	// a second buyer with a matching bucket cannot buy it again
	second := s.createBucket(t0, other, bundle(asset.NewToken("token_b", 20_000), nft("nft_y", "4")))
	_, err = s.engine.ChangeAsk(s.ctx, env(t0), seller, listingID, bundle(asset.NewToken("token_b", 20_000)))
	s.ErrorIs(err, ErrUnauthorized, "seller no longer owns the listing")

	_, err = s.engine.BuyListing(s.ctx, env(t0), other, listingID, second)
	s.ErrorIs(err, ErrAskMismatch)

	// the claimed bucket cannot be spent again by its new owner
	_, err = s.engine.AddToBucket(s.ctx, env(t0), seller, bucketID, bundle(asset.NewCoin("cur_a", 1)))
	s.ErrorIs(err, ErrInvalidStatus)
}

func (s *EngineSuite) TestBuyClosedListingWithMatchingBucket() {
	ask := bundle(asset.NewToken("token_b", 5))
	listingID := s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 10)), ask)
	first := s.createBucket(t0, buyer, bundle(asset.NewToken("token_b", 5)))
	second := s.createBucket(t0, other, bundle(asset.NewToken("token_b", 5)))

	_, err := s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, first)
	s.Require().NoError(err)

	before := s.dump()
	_, err = s.engine.BuyListing(s.ctx, env(t0), other, listingID, second)
	s.ErrorIs(err, ErrNotPurchasable)
	s.Equal(before, s.dump())
}

func (s *EngineSuite) TestRoyaltyCapFailureLeavesRecordsUntouched() {
	s.cfg.RoyaltyCapBps = 300
	s.rebuild()
	s.registerRoyalty("nft_x", "artist_x", 200)
	s.registerRoyalty("nft_z", "artist_z", 101)

	forSale := bundle(nft("nft_x", "1"), nft("nft_z", "9"), asset.NewCoin("cur_b", 10))
	ask := bundle(asset.NewToken("token_b", 20_000))
	listingID := s.createListing(t0, seller, forSale, ask)
	bucketID := s.createBucket(t0, buyer, bundle(asset.NewToken("token_b", 20_000)))

	before := s.dump()
	res, err := s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, bucketID)
	s.Nil(res)
	s.ErrorIs(err, asset.ErrRoyaltyCapExceeded)
	s.Equal(before, s.dump())

	// exactly at the cap succeeds
	_, err = s.engine.RemoveRoyalty(s.ctx, env(t0), "minter_nft_z", "nft_z")
	s.Require().NoError(err)
	s.registerRoyalty("nft_z", "artist_z", 100)
	res, err = s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, bucketID)
	s.Require().NoError(err)
	s.Equal("300", res.Attribute(AttrSellerRoyaltyBps))
}

func (s *EngineSuite) TestRequireFinalize() {
	s.cfg.RequireFinalize = true
	s.rebuild()
	listingID, bucketID := s.tradeFixture()

	_, err := s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, bucketID)
	s.ErrorIs(err, ErrNotPurchasable)

	_, err = s.engine.FinalizeListing(s.ctx, env(t0), seller, listingID, MaxTTL)
	s.Require().NoError(err)
	_, err = s.engine.BuyListing(s.ctx, env(t0+MaxTTL-1), buyer, listingID, bucketID)
	s.Require().NoError(err)
}

func (s *EngineSuite) TestWhitelistedBuyerCanBuy() {
	listingID, bucketID := s.tradeFixture()
	_, err := s.engine.SetWhitelist(s.ctx, env(t0), seller, listingID, buyer)
	s.Require().NoError(err)
	_, err = s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, bucketID)
	s.Require().NoError(err)
}

func (s *EngineSuite) TestFeeCurrencyCycles() {
	// the first operation starts the cycle on cur_a
	s.createListing(t0, seller, bundle(asset.NewCoin("cur_a", 1)), nil)
	state, err := s.engine.FeeDenom(s.ctx)
	s.Require().NoError(err)
	s.Equal("cur_a", state.Active)
	s.Equal(t0, state.LastCycle)

	s.createListing(t0+s.cfg.FeeCyclePeriod-1, seller, bundle(asset.NewCoin("cur_a", 1)), nil)
	state, err = s.engine.FeeDenom(s.ctx)
	s.Require().NoError(err)
	s.Equal("cur_a", state.Active)

	ask := bundle(asset.NewCoin("cur_b", 1_000))
	listingID := s.createListing(t0+s.cfg.FeeCyclePeriod, seller, bundle(asset.NewCoin("cur_b", 1_000)), ask)
	state, err = s.engine.FeeDenom(s.ctx)
	s.Require().NoError(err)
	s.Equal("cur_b", state.Active)
	s.Equal(t0+s.cfg.FeeCyclePeriod, state.LastCycle)

	// fees are now levied on cur_b
	bucketID := s.createBucket(t0+s.cfg.FeeCyclePeriod, buyer, bundle(asset.NewCoin("cur_b", 1_000)))
	res, err := s.engine.BuyListing(s.ctx, env(t0+s.cfg.FeeCyclePeriod), buyer, listingID, bucketID)
	s.Require().NoError(err)
	s.Equal("cur_b", res.Attribute(AttrFeeDenom))
	s.Equal("5cur_b", res.Attribute(AttrListingFee))
	s.Equal("5cur_b", res.Attribute(AttrBucketFee))
}

func (s *EngineSuite) TestFeeDenomBeforeFirstOperation() {
	state, err := s.engine.FeeDenom(s.ctx)
	s.Require().NoError(err)
	s.Equal("cur_a", state.Active)
	s.Equal("cur_b", state.DenomB)
}

func (s *EngineSuite) TestCancelUnusedBucket() {
	bucketID := s.createBucket(t0, buyer, bundle(asset.NewCoin("cur_a", 100)))
	_, err := s.engine.AddToBucket(s.ctx, env(t0), other, bucketID, bundle(asset.NewToken("token_a", 1)))
	s.ErrorIs(err, ErrUnauthorized)
	_, err = s.engine.AddToBucket(s.ctx, env(t0), buyer, bucketID, bundle(asset.NewToken("token_a", 7)))
	s.Require().NoError(err)

	res, err := s.engine.RemoveBucket(s.ctx, env(t0+1), buyer, bucketID)
	s.Require().NoError(err)
	s.Require().Len(res.Instructions, 2)
	for _, ins := range res.Instructions {
		s.Equal(buyer, ins.Recipient)
		s.NotEqual(asset.KindFeeSink, ins.Kind)
	}

	_, err = s.engine.Bucket(s.ctx, bucketID)
	s.True(IsNotFound(err))
	page, err := s.engine.BucketsByOwner(s.ctx, buyer, 0)
	s.Require().NoError(err)
	s.Empty(page)
}

type brokenSink struct{}

func (brokenSink) Transfer(asset.Coin) (asset.Instruction, error) {
	return asset.Instruction{}, errors.New("sink unavailable")
}

func (s *EngineSuite) TestSinkFailureKeepsListingWithdrawable() {
	listingID, bucketID := s.tradeFixture()
	_, err := s.engine.BuyListing(s.ctx, env(t0), buyer, listingID, bucketID)
	s.Require().NoError(err)

	s.sink = brokenSink{}
	s.rebuild()
	_, err = s.engine.WithdrawPurchased(s.ctx, env(t0+1), buyer, listingID)
	s.ErrorIs(err, ErrGeneric)
	l, err := s.engine.Listing(s.ctx, listingID)
	s.Require().NoError(err)
	s.Equal(buyer, l.Claimant)

	s.sink = fee.AddressSink{Address: sinkTo}
	s.rebuild()
	res, err := s.engine.WithdrawPurchased(s.ctx, env(t0+2), buyer, listingID)
	s.Require().NoError(err)
	s.Equal(asset.KindFeeSink, res.Instructions[len(res.Instructions)-1].Kind)
}

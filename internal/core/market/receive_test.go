package market

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/LeJamon/goMarketd/internal/core/asset"
)

func (s *EngineSuite) TestReceiveTokensCreatesListing() {
	payload := []byte(`{"create_listing":{"ask":{"coins":[{"denom":"cur_a","amount":"100"}],"tokens":[],"nfts":[]}}}`)
	res, err := s.engine.ReceiveTokens(s.ctx, env(t0), "token_a", seller, sdkmath.NewUint(50), payload)
	s.Require().NoError(err)
	s.Equal("create_listing", res.Action)

	l, err := s.engine.Listing(s.ctx, res.ListingID)
	s.Require().NoError(err)
	s.Equal(seller, l.Creator)
	s.Equal("50", l.ForSale.TokenAmountOf("token_a").String())
	s.Equal("100", l.Ask.CoinAmount("cur_a").String())

	res, err = s.engine.ReceiveTokens(s.ctx, env(t0), "token_a", seller, sdkmath.NewUint(25),
		[]byte(fmt.Sprintf(`{"add_to_listing":{"id":%d}}`, l.ID)))
	s.Require().NoError(err)
	l, err = s.engine.Listing(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal("75", l.ForSale.TokenAmountOf("token_a").String())
}

func (s *EngineSuite) TestReceiveNftFundsBucket() {
	res, err := s.engine.ReceiveNft(s.ctx, env(t0), "nft_y", buyer, "3", []byte(`{"create_bucket":{}}`))
	s.Require().NoError(err)
	bucketID := res.BucketID

	_, err = s.engine.ReceiveTokens(s.ctx, env(t0), "token_b", buyer, sdkmath.NewUint(20_000),
		[]byte(fmt.Sprintf(`{"add_to_bucket":{"id":%d}}`, bucketID)))
	s.Require().NoError(err)

	b, err := s.engine.Bucket(s.ctx, bucketID)
	s.Require().NoError(err)
	s.True(b.Funds.MultisetEquals(bundle(asset.NewToken("token_b", 20_000), nft("nft_y", "3"))))

	// the same NFT cannot be deposited twice into one bucket
	_, err = s.engine.ReceiveNft(s.ctx, env(t0), "nft_y", buyer, "3",
		[]byte(fmt.Sprintf(`{"add_to_bucket":{"id":%d}}`, bucketID)))
	s.ErrorIs(err, asset.ErrInvalidBalance)
}

func (s *EngineSuite) TestReceiveRejectsUnknownContracts() {
	_, err := s.engine.ReceiveTokens(s.ctx, env(t0), "nft_x", seller, sdkmath.NewUint(1), []byte(`{"create_bucket":{}}`))
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.engine.ReceiveNft(s.ctx, env(t0), "token_a", seller, "1", []byte(`{"create_bucket":{}}`))
	s.ErrorIs(err, ErrUnauthorized)
	s.Empty(s.dump())
}

func (s *EngineSuite) TestReceiveRejectsBadPayloads() {
	for _, payload := range []string{
		``,
		`{}`,
		`not json`,
		`{"create_bucket":{},"add_to_bucket":{"id":1}}`,
	} {
		_, err := s.engine.ReceiveTokens(s.ctx, env(t0), "token_a", seller, sdkmath.NewUint(1), []byte(payload))
		s.ErrorIs(err, ErrGeneric, "payload %q", payload)
	}

	_, err := s.engine.ReceiveTokens(s.ctx, env(t0), "token_a", seller, sdkmath.ZeroUint(), []byte(`{"create_bucket":{}}`))
	s.ErrorIs(err, asset.ErrInvalidBalance)
}

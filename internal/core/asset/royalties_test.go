package asset

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// totals sums the per-denom and per-contract amounts of a bundle plus the
// fungible amounts of a set of instructions.
func totals(b *Bundle, ins []Instruction) map[string]sdkmath.Uint {
	out := map[string]sdkmath.Uint{}
	add := func(k string, v sdkmath.Uint) {
		if cur, ok := out[k]; ok {
			out[k] = cur.Add(v)
			return
		}
		out[k] = v
	}
	for _, c := range b.Coins {
		add("coin:"+c.Denom, c.Amount)
	}
	for _, t := range b.Tokens {
		add("token:"+t.Contract, t.Amount)
	}
	for _, i := range ins {
		switch i.Kind {
		case KindBankSend:
			add("coin:"+i.Denom, i.Amount)
		case KindTokenTransfer:
			add("token:"+i.Contract, i.Amount)
		}
	}
	return out
}

func TestRoyaltiesDeductsProportionally(t *testing.T) {
	b := NewBundle()
	b.AddCoin(NewCoin("ucur", 1_000_000))
	b.AddToken(NewToken("token_b", 20_000))
	before := totals(b, nil)

	shares := []*RoyaltyShare{
		{Collection: "nft_x", Payout: "artist_x", Bps: 100},
		nil,
		{Collection: "nft_z", Payout: "artist_z", Bps: 250},
	}

	ins, bps, err := b.Royalties(shares, DefaultRoyaltyCapBps)
	require.NoError(t, err)
	assert.Equal(t, uint32(350), bps)
	require.Len(t, ins, 4)

	// 1% and 2.5% of the original amounts
	assert.Equal(t, "artist_x", ins[0].Recipient)
	assert.Equal(t, "10000", ins[0].Amount.String())
	assert.Equal(t, "artist_z", ins[1].Recipient)
	assert.Equal(t, "25000", ins[1].Amount.String())
	assert.Equal(t, KindTokenTransfer, ins[2].Kind)
	assert.Equal(t, "200", ins[2].Amount.String())
	assert.Equal(t, "500", ins[3].Amount.String())

	assert.Equal(t, "965000", b.CoinAmount("ucur").String())
	assert.Equal(t, "19300", b.TokenAmountOf("token_b").String())

	after := totals(b, ins)
	require.Len(t, after, len(before))
	for k, v := range before {
		assert.True(t, v.Equal(after[k]), "value not conserved for %s", k)
	}
}

func TestRoyaltiesSkipsZeroAmounts(t *testing.T) {
	b := NewBundle()
	b.AddCoin(NewCoin("ucur", 99))
	b.AddToken(NewToken("token_b", 20))

	ins, bps, err := b.Royalties([]*RoyaltyShare{{Collection: "nft_x", Payout: "artist", Bps: 100}}, DefaultRoyaltyCapBps)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), bps)
	assert.Empty(t, ins)
	assert.Equal(t, "99", b.CoinAmount("ucur").String())
	assert.Equal(t, "20", b.TokenAmountOf("token_b").String())
}

func TestRoyaltiesNoRegistrations(t *testing.T) {
	b := sampleBundle()
	snapshot := b.Clone()

	ins, bps, err := b.Royalties([]*RoyaltyShare{nil, nil}, DefaultRoyaltyCapBps)
	require.NoError(t, err)
	assert.Zero(t, bps)
	assert.Empty(t, ins)
	assert.True(t, b.MultisetEquals(snapshot))
}

func TestRoyaltiesCapExceededLeavesBundleUntouched(t *testing.T) {
	b := sampleBundle()
	snapshot := b.Clone()

	shares := []*RoyaltyShare{
		{Collection: "a", Payout: "pa", Bps: 3000},
		{Collection: "b", Payout: "pb", Bps: 2001},
	}
	ins, bps, err := b.Royalties(shares, DefaultRoyaltyCapBps)
	assert.ErrorIs(t, err, ErrRoyaltyCapExceeded)
	assert.Nil(t, ins)
	assert.Zero(t, bps)
	assert.True(t, b.MultisetEquals(snapshot))

	// exactly at the cap is allowed
	shares[1].Bps = 2000
	_, bps, err = b.Royalties(shares, DefaultRoyaltyCapBps)
	require.NoError(t, err)
	assert.Equal(t, uint32(5000), bps)
}

func TestRoyaltiesNeverTouchesNfts(t *testing.T) {
	b := sampleBundle()
	_, _, err := b.Royalties([]*RoyaltyShare{{Collection: "nft_x", Payout: "artist", Bps: 300}}, DefaultRoyaltyCapBps)
	require.NoError(t, err)
	assert.Len(t, b.Nfts, 2)
}

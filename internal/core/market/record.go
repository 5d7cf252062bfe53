package market

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/LeJamon/goMarketd/internal/core/asset"
)

// Persisted forms. Amounts are stored as decimal strings so records do not
// depend on the in-memory integer representation.

type coinRecord struct {
	Denom  string `codec:"d"`
	Amount string `codec:"a"`
}

type tokenRecord struct {
	Contract string `codec:"c"`
	Amount   string `codec:"a"`
}

type nftRecord struct {
	Contract string `codec:"c"`
	TokenID  string `codec:"t"`
}

type bundleRecord struct {
	Coins  []coinRecord  `codec:"coins"`
	Tokens []tokenRecord `codec:"tokens"`
	Nfts   []nftRecord   `codec:"nfts"`
}

type listingRecord struct {
	Creator          string       `codec:"creator"`
	ID               uint64       `codec:"id"`
	Status           string       `codec:"status"`
	Claimant         string       `codec:"claimant"`
	WhitelistedBuyer string       `codec:"whitelist"`
	ForSale          bundleRecord `codec:"for_sale"`
	Ask              bundleRecord `codec:"ask"`
	FeeAmount        *coinRecord  `codec:"fee"`
	FinalizedAt      int64        `codec:"finalized_at"`
	ExpiresAt        int64        `codec:"expires_at"`
}

type bucketRecord struct {
	Owner     string       `codec:"owner"`
	ID        uint64       `codec:"id"`
	Funds     bundleRecord `codec:"funds"`
	FeeAmount *coinRecord  `codec:"fee"`
	Claimed   bool         `codec:"claimed"`
}

func parseAmount(s string) (sdkmath.Uint, error) {
	u, err := sdkmath.ParseUint(s)
	if err != nil {
		return sdkmath.Uint{}, fmt.Errorf("invalid stored amount %q: %w", s, err)
	}
	return u, nil
}

func fromCoin(c *asset.Coin) *coinRecord {
	if c == nil {
		return nil
	}
	return &coinRecord{Denom: c.Denom, Amount: c.Amount.String()}
}

func (r *coinRecord) toCoin() (*asset.Coin, error) {
	if r == nil {
		return nil, nil
	}
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return nil, err
	}
	return &asset.Coin{Denom: r.Denom, Amount: amount}, nil
}

func fromBundle(b *asset.Bundle) bundleRecord {
	var r bundleRecord
	if b == nil {
		return r
	}
	for _, c := range b.Coins {
		r.Coins = append(r.Coins, coinRecord{Denom: c.Denom, Amount: c.Amount.String()})
	}
	for _, t := range b.Tokens {
		r.Tokens = append(r.Tokens, tokenRecord{Contract: t.Contract, Amount: t.Amount.String()})
	}
	for _, n := range b.Nfts {
		r.Nfts = append(r.Nfts, nftRecord{Contract: n.Contract, TokenID: n.TokenID})
	}
	return r
}

func (r bundleRecord) toBundle() (*asset.Bundle, error) {
	b := asset.NewBundle()
	for _, c := range r.Coins {
		amount, err := parseAmount(c.Amount)
		if err != nil {
			return nil, err
		}
		b.Coins = append(b.Coins, asset.Coin{Denom: c.Denom, Amount: amount})
	}
	for _, t := range r.Tokens {
		amount, err := parseAmount(t.Amount)
		if err != nil {
			return nil, err
		}
		b.Tokens = append(b.Tokens, asset.TokenAmount{Contract: t.Contract, Amount: amount})
	}
	for _, n := range r.Nfts {
		b.Nfts = append(b.Nfts, asset.NftRef{Contract: n.Contract, TokenID: n.TokenID})
	}
	return b, nil
}

func fromListing(l *Listing) *listingRecord {
	return &listingRecord{
		Creator:          l.Creator,
		ID:               l.ID,
		Status:           string(l.Status),
		Claimant:         l.Claimant,
		WhitelistedBuyer: l.WhitelistedBuyer,
		ForSale:          fromBundle(l.ForSale),
		Ask:              fromBundle(l.Ask),
		FeeAmount:        fromCoin(l.FeeAmount),
		FinalizedAt:      l.FinalizedAt,
		ExpiresAt:        l.ExpiresAt,
	}
}

func (r *listingRecord) toListing() (*Listing, error) {
	forSale, err := r.ForSale.toBundle()
	if err != nil {
		return nil, err
	}
	ask, err := r.Ask.toBundle()
	if err != nil {
		return nil, err
	}
	fee, err := r.FeeAmount.toCoin()
	if err != nil {
		return nil, err
	}
	return &Listing{
		Creator:          r.Creator,
		ID:               r.ID,
		Status:           Status(r.Status),
		Claimant:         r.Claimant,
		WhitelistedBuyer: r.WhitelistedBuyer,
		ForSale:          forSale,
		Ask:              ask,
		FeeAmount:        fee,
		FinalizedAt:      r.FinalizedAt,
		ExpiresAt:        r.ExpiresAt,
	}, nil
}

func fromBucket(b *Bucket) *bucketRecord {
	return &bucketRecord{
		Owner:     b.Owner,
		ID:        b.ID,
		Funds:     fromBundle(b.Funds),
		FeeAmount: fromCoin(b.FeeAmount),
		Claimed:   b.Claimed,
	}
}

func (r *bucketRecord) toBucket() (*Bucket, error) {
	funds, err := r.Funds.toBundle()
	if err != nil {
		return nil, err
	}
	fee, err := r.FeeAmount.toCoin()
	if err != nil {
		return nil, err
	}
	return &Bucket{
		Owner:     r.Owner,
		ID:        r.ID,
		Funds:     funds,
		FeeAmount: fee,
		Claimed:   r.Claimed,
	}, nil
}

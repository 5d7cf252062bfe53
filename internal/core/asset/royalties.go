package asset

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// DefaultRoyaltyCapBps is the default ceiling on the summed royalty rate of
// one settlement side (50%).
const DefaultRoyaltyCapBps = 5000

// RoyaltyShare is the part of a royalty registration the bundle arithmetic
// needs: where to pay and at which rate.
type RoyaltyShare struct {
	Collection string
	Payout     string
	Bps        uint32
}

// Royalties deducts royalties from the bundle in place and returns the
// payout transfers together with the total rate applied. lookups holds one
// optional share per distinct NFT contract of the counter-side bundle; nil
// entries are unregistered collections.
//
// Every share is computed on the pre-royalty amount, so the total deducted
// from any entry is at most capBps of it. Zero results are skipped.
func (b *Bundle) Royalties(lookups []*RoyaltyShare, capBps uint32) ([]Instruction, uint32, error) {
	var totalBps uint32
	matched := make([]*RoyaltyShare, 0, len(lookups))
	for _, share := range lookups {
		if share == nil {
			continue
		}
		totalBps += share.Bps
		matched = append(matched, share)
	}
	if totalBps > capBps {
		return nil, 0, fmt.Errorf("%w: %d bps exceeds cap of %d", ErrRoyaltyCapExceeded, totalBps, capBps)
	}
	if len(matched) == 0 {
		return nil, 0, nil
	}

	var instructions []Instruction
	coins := make([]Coin, len(b.Coins))
	copy(coins, b.Coins)
	for _, c := range coins {
		for _, share := range matched {
			amount := royaltyAmount(c.Amount, share.Bps)
			if amount.IsZero() {
				continue
			}
			b.subCoin(c.Denom, amount)
			instructions = append(instructions, BankSend(share.Payout, Coin{Denom: c.Denom, Amount: amount}))
		}
	}

	tokens := make([]TokenAmount, len(b.Tokens))
	copy(tokens, b.Tokens)
	for _, t := range tokens {
		for _, share := range matched {
			amount := royaltyAmount(t.Amount, share.Bps)
			if amount.IsZero() {
				continue
			}
			b.subToken(t.Contract, amount)
			instructions = append(instructions, TokenTransfer(share.Payout, TokenAmount{Contract: t.Contract, Amount: amount}))
		}
	}

	return instructions, totalBps, nil
}

// royaltyAmount returns floor(amount * bps / 10000).
func royaltyAmount(amount sdkmath.Uint, bps uint32) sdkmath.Uint {
	return amount.MulUint64(uint64(bps)).QuoUint64(BpsDenominator)
}

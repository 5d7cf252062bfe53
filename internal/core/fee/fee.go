// Package fee implements the marketplace fee: a fixed 0.5% levied on
// whichever of two designated currencies is currently active, with the
// active currency alternating on a weekly cadence.
package fee

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goMarketd/internal/core/asset"
)

const (
	// CyclePeriod is the number of seconds between fee currency flips.
	CyclePeriod int64 = 604800

	// RateNumerator and RateDenominator express the 0.5% fee rate.
	RateNumerator   = 5
	RateDenominator = 1000
)

// ErrInvalidDenoms is returned when the two fee currencies are not distinct
// non-empty denoms.
var ErrInvalidDenoms = errors.New("fee denoms must be two distinct non-empty denoms")

// DenomState is the persisted fee currency state.
type DenomState struct {
	Active    string `json:"active"`
	DenomA    string `json:"denom_a"`
	DenomB    string `json:"denom_b"`
	LastCycle int64  `json:"last_cycle"`
}

// NewDenomState starts a fee cycle on denomA at time now.
func NewDenomState(denomA, denomB string, now int64) (*DenomState, error) {
	if denomA == "" || denomB == "" || denomA == denomB {
		return nil, fmt.Errorf("%w: %q, %q", ErrInvalidDenoms, denomA, denomB)
	}
	return &DenomState{
		Active:    denomA,
		DenomA:    denomA,
		DenomB:    denomB,
		LastCycle: now,
	}, nil
}

// Cycle flips the active currency once a full period has elapsed since the
// last flip and reports whether it did.
func (s *DenomState) Cycle(now int64) bool {
	return s.CycleEvery(now, CyclePeriod)
}

// CycleEvery is Cycle with an explicit period.
func (s *DenomState) CycleEvery(now, period int64) bool {
	if now < s.LastCycle+period {
		return false
	}
	if s.Active == s.DenomA {
		s.Active = s.DenomB
	} else {
		s.Active = s.DenomA
	}
	s.LastCycle = now
	return true
}

// ComputeFee levies the fee on the active denom of bundle. It returns nil
// and an unchanged copy when the denom is absent or the fee rounds to zero;
// otherwise the fee coin and a copy of the bundle reduced by it. bundle
// itself is never modified.
func ComputeFee(activeDenom string, bundle *asset.Bundle) (*asset.Coin, *asset.Bundle) {
	remainder := bundle.Clone()
	amount := remainder.CoinAmount(activeDenom)
	if amount.IsZero() {
		return nil, remainder
	}

	fee := amount.MulUint64(RateNumerator).QuoUint64(RateDenominator)
	if fee.IsZero() {
		return nil, remainder
	}

	coin := asset.Coin{Denom: activeDenom, Amount: fee}
	if err := remainder.SubCoin(coin); err != nil {
		// fee never exceeds the held amount
		return nil, bundle.Clone()
	}
	return &coin, remainder
}

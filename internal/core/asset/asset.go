// Package asset implements the mixed asset bundle held in escrow: native
// coins, fungible token amounts and NFT references, together with the
// arithmetic used by fee and royalty settlement.
package asset

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// MaxAssets is the maximum number of entries a bundle may hold across all
// three asset classes.
const MaxAssets = 25

// BpsDenominator is 100% expressed in basis points.
const BpsDenominator = 10000

// Coin is an amount of a native denomination.
type Coin struct {
	Denom  string       `json:"denom"`
	Amount sdkmath.Uint `json:"amount"`
}

// NewCoin creates a coin from a uint64 amount
func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: sdkmath.NewUint(amount)}
}

func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

// TokenAmount is an amount of a fungible token identified by its contract address.
type TokenAmount struct {
	Contract string       `json:"contract"`
	Amount   sdkmath.Uint `json:"amount"`
}

// NewToken creates a token amount from a uint64 amount
func NewToken(contract string, amount uint64) TokenAmount {
	return TokenAmount{Contract: contract, Amount: sdkmath.NewUint(amount)}
}

func (t TokenAmount) String() string {
	return fmt.Sprintf("%s:%s", t.Contract, t.Amount.String())
}

// NftRef references a single non-fungible token.
type NftRef struct {
	Contract string `json:"contract"`
	TokenID  string `json:"token_id"`
}

func (n NftRef) String() string {
	return fmt.Sprintf("%s#%s", n.Contract, n.TokenID)
}

// isZero treats an uninitialized amount as zero.
func isZero(u sdkmath.Uint) bool {
	return u.IsNil() || u.IsZero()
}

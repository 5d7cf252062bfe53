package asset

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Bundle is a mixed collection of coins, fungible tokens and NFTs treated as
// a single matchable value. Lookups are linear; bundles never grow beyond
// MaxAssets entries.
type Bundle struct {
	Coins  []Coin        `json:"coins"`
	Tokens []TokenAmount `json:"tokens"`
	Nfts   []NftRef      `json:"nfts"`
}

// NewBundle returns an empty bundle
func NewBundle() *Bundle {
	return &Bundle{
		Coins:  []Coin{},
		Tokens: []TokenAmount{},
		Nfts:   []NftRef{},
	}
}

// Clone returns a deep copy of the bundle
func (b *Bundle) Clone() *Bundle {
	if b == nil {
		return NewBundle()
	}
	c := &Bundle{
		Coins:  make([]Coin, len(b.Coins)),
		Tokens: make([]TokenAmount, len(b.Tokens)),
		Nfts:   make([]NftRef, len(b.Nfts)),
	}
	copy(c.Coins, b.Coins)
	copy(c.Tokens, b.Tokens)
	copy(c.Nfts, b.Nfts)
	return c
}

// Count returns the total number of entries across all asset classes
func (b *Bundle) Count() int {
	return len(b.Coins) + len(b.Tokens) + len(b.Nfts)
}

// IsEmpty reports whether the bundle holds nothing
func (b *Bundle) IsEmpty() bool {
	return b.Count() == 0
}

// AddCoin merges a coin into the bundle, summing amounts of the same denom.
func (b *Bundle) AddCoin(c Coin) {
	for i := range b.Coins {
		if b.Coins[i].Denom == c.Denom {
			b.Coins[i].Amount = b.Coins[i].Amount.Add(c.Amount)
			return
		}
	}
	b.Coins = append(b.Coins, c)
}

// AddToken merges a token amount into the bundle, summing amounts of the
// same contract.
func (b *Bundle) AddToken(t TokenAmount) {
	for i := range b.Tokens {
		if b.Tokens[i].Contract == t.Contract {
			b.Tokens[i].Amount = b.Tokens[i].Amount.Add(t.Amount)
			return
		}
	}
	b.Tokens = append(b.Tokens, t)
}

// AddNft appends an NFT. NFTs are never merged; a duplicate reference is
// left for CheckValid to reject.
func (b *Bundle) AddNft(n NftRef) {
	b.Nfts = append(b.Nfts, n)
}

// Merge adds every entry of other into b.
func (b *Bundle) Merge(other *Bundle) {
	if other == nil {
		return
	}
	for _, c := range other.Coins {
		b.AddCoin(c)
	}
	for _, t := range other.Tokens {
		b.AddToken(t)
	}
	for _, n := range other.Nfts {
		b.AddNft(n)
	}
}

// CheckValid verifies the bundle invariants: not empty, no zero amounts, no
// duplicate denoms, contracts or NFTs, and at most MaxAssets entries.
func (b *Bundle) CheckValid() error {
	if b == nil || b.IsEmpty() {
		return fmt.Errorf("%w: bundle is empty", ErrInvalidBalance)
	}
	if b.Count() > MaxAssets {
		return fmt.Errorf("%w: %d entries exceeds maximum of %d", ErrInvalidBalance, b.Count(), MaxAssets)
	}

	denoms := make(map[string]struct{}, len(b.Coins))
	for _, c := range b.Coins {
		if c.Denom == "" {
			return fmt.Errorf("%w: coin without denom", ErrInvalidBalance)
		}
		if isZero(c.Amount) {
			return fmt.Errorf("%w: zero amount of %s", ErrInvalidBalance, c.Denom)
		}
		if _, dup := denoms[c.Denom]; dup {
			return fmt.Errorf("%w: duplicate denom %s", ErrInvalidBalance, c.Denom)
		}
		denoms[c.Denom] = struct{}{}
	}

	contracts := make(map[string]struct{}, len(b.Tokens))
	for _, t := range b.Tokens {
		if t.Contract == "" {
			return fmt.Errorf("%w: token without contract", ErrInvalidBalance)
		}
		if isZero(t.Amount) {
			return fmt.Errorf("%w: zero amount of token %s", ErrInvalidBalance, t.Contract)
		}
		if _, dup := contracts[t.Contract]; dup {
			return fmt.Errorf("%w: duplicate token contract %s", ErrInvalidBalance, t.Contract)
		}
		contracts[t.Contract] = struct{}{}
	}

	nfts := make(map[NftRef]struct{}, len(b.Nfts))
	for _, n := range b.Nfts {
		if n.Contract == "" || n.TokenID == "" {
			return fmt.Errorf("%w: incomplete nft reference %s", ErrInvalidBalance, n)
		}
		if _, dup := nfts[n]; dup {
			return fmt.Errorf("%w: duplicate nft %s", ErrInvalidBalance, n)
		}
		nfts[n] = struct{}{}
	}

	return nil
}

// MultisetEquals reports whether both bundles hold exactly the same
// denom/contract amounts and the same NFT set, regardless of order.
func (b *Bundle) MultisetEquals(other *Bundle) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.Coins) != len(other.Coins) || len(b.Tokens) != len(other.Tokens) || len(b.Nfts) != len(other.Nfts) {
		return false
	}

	coins := make(map[string]sdkmath.Uint, len(b.Coins))
	for _, c := range b.Coins {
		coins[c.Denom] = sumInto(coins[c.Denom], c.Amount)
	}
	otherCoins := make(map[string]sdkmath.Uint, len(other.Coins))
	for _, c := range other.Coins {
		otherCoins[c.Denom] = sumInto(otherCoins[c.Denom], c.Amount)
	}
	if !amountsEqual(coins, otherCoins) {
		return false
	}

	tokens := make(map[string]sdkmath.Uint, len(b.Tokens))
	for _, t := range b.Tokens {
		tokens[t.Contract] = sumInto(tokens[t.Contract], t.Amount)
	}
	otherTokens := make(map[string]sdkmath.Uint, len(other.Tokens))
	for _, t := range other.Tokens {
		otherTokens[t.Contract] = sumInto(otherTokens[t.Contract], t.Amount)
	}
	if !amountsEqual(tokens, otherTokens) {
		return false
	}

	nfts := make(map[NftRef]int, len(b.Nfts))
	for _, n := range b.Nfts {
		nfts[n]++
	}
	for _, n := range other.Nfts {
		nfts[n]--
	}
	for _, count := range nfts {
		if count != 0 {
			return false
		}
	}
	return true
}

// CoinAmount returns the amount held of denom, or zero.
func (b *Bundle) CoinAmount(denom string) sdkmath.Uint {
	for _, c := range b.Coins {
		if c.Denom == denom {
			return c.Amount
		}
	}
	return sdkmath.ZeroUint()
}

// TokenAmountOf returns the amount held of the token contract, or zero.
func (b *Bundle) TokenAmountOf(contract string) sdkmath.Uint {
	for _, t := range b.Tokens {
		if t.Contract == contract {
			return t.Amount
		}
	}
	return sdkmath.ZeroUint()
}

// NftContracts returns the distinct NFT contracts in first-seen order.
func (b *Bundle) NftContracts() []string {
	seen := make(map[string]struct{}, len(b.Nfts))
	contracts := make([]string, 0, len(b.Nfts))
	for _, n := range b.Nfts {
		if _, ok := seen[n.Contract]; ok {
			continue
		}
		seen[n.Contract] = struct{}{}
		contracts = append(contracts, n.Contract)
	}
	return contracts
}

// Instructions builds the transfers that release the whole bundle to recipient.
func (b *Bundle) Instructions(recipient string) []Instruction {
	out := make([]Instruction, 0, b.Count())
	for _, c := range b.Coins {
		if isZero(c.Amount) {
			continue
		}
		out = append(out, BankSend(recipient, c))
	}
	for _, t := range b.Tokens {
		if isZero(t.Amount) {
			continue
		}
		out = append(out, TokenTransfer(recipient, t))
	}
	for _, n := range b.Nfts {
		out = append(out, NftTransfer(recipient, n))
	}
	return out
}

// subCoin reduces the amount of denom by amount. The caller guarantees the
// bundle holds at least amount.
func (b *Bundle) subCoin(denom string, amount sdkmath.Uint) {
	for i := range b.Coins {
		if b.Coins[i].Denom == denom {
			b.Coins[i].Amount = b.Coins[i].Amount.Sub(amount)
			return
		}
	}
}

func (b *Bundle) subToken(contract string, amount sdkmath.Uint) {
	for i := range b.Tokens {
		if b.Tokens[i].Contract == contract {
			b.Tokens[i].Amount = b.Tokens[i].Amount.Sub(amount)
			return
		}
	}
}

// SubCoin reduces the amount of denom. It fails if the bundle holds less.
func (b *Bundle) SubCoin(c Coin) error {
	if b.CoinAmount(c.Denom).LT(c.Amount) {
		return fmt.Errorf("%w: insufficient %s", ErrInvalidBalance, c.Denom)
	}
	b.subCoin(c.Denom, c.Amount)
	return nil
}

func sumInto(acc, amount sdkmath.Uint) sdkmath.Uint {
	if acc.IsNil() {
		return amount
	}
	return acc.Add(amount)
}

func amountsEqual(a, b map[string]sdkmath.Uint) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// Package royalty keeps the per-collection royalty registrations consulted
// at settlement time, and the write path collection minters use to manage
// them.
package royalty

import (
	"errors"

	"github.com/LeJamon/goMarketd/internal/core/asset"
)

// Registration limits.
const (
	MinBps uint32 = 10
	MaxBps uint32 = 300

	// UpdateCooldown is the number of blocks that must pass between two
	// changes to the same registration.
	UpdateCooldown uint64 = 100
)

var (
	ErrNotMinter         = errors.New("sender is not the collection minter")
	ErrInvalidBps        = errors.New("royalty bps out of range")
	ErrInvalidPayout     = errors.New("payout address is empty")
	ErrAlreadyRegistered = errors.New("collection already registered")
	ErrNotRegistered     = errors.New("collection not registered")
	ErrCooldown          = errors.New("registration updated too recently")
	ErrReadOnly          = errors.New("royalty view is read-only")
)

// Registration maps an NFT collection to its royalty payout.
type Registration struct {
	Collection  string `codec:"collection" json:"nft_collection"`
	Payout      string `codec:"payout" json:"payout_address"`
	Bps         uint32 `codec:"bps" json:"bps"`
	LastUpdated uint64 `codec:"last_updated" json:"last_updated"`
}

// Share converts the registration into the form bundle arithmetic consumes.
// A nil registration yields a nil share.
func (r *Registration) Share() *asset.RoyaltyShare {
	if r == nil {
		return nil
	}
	return &asset.RoyaltyShare{Collection: r.Collection, Payout: r.Payout, Bps: r.Bps}
}

// Shares converts a LookupMany result, preserving order and nils.
func Shares(regs []*Registration) []*asset.RoyaltyShare {
	out := make([]*asset.RoyaltyShare, len(regs))
	for i, r := range regs {
		out[i] = r.Share()
	}
	return out
}

func validBps(bps uint32) bool {
	return bps >= MinBps && bps <= MaxBps
}

// Key returns the state key of a collection's registration.
func Key(collection string) string {
	return "r/" + collection
}

// Package market implements the escrow marketplace: listings offering an
// asset bundle at an asking bundle, buckets holding a buyer's pre-funded
// payment, and the atomic settlement that swaps the two.
package market

import (
	"github.com/LeJamon/goMarketd/internal/core/asset"
)

// Finalization bounds, in seconds.
const (
	MinTTL int64 = 600
	MaxTTL int64 = 1209600
)

// Env is the single authoritative time and height of one invocation.
type Env struct {
	Now    int64  `json:"now"`
	Height uint64 `json:"height"`
}

// Status is the lifecycle state of a listing.
type Status string

const (
	StatusOpen           Status = "open"
	StatusFinalizedReady Status = "finalized_ready"
	StatusClosed         Status = "closed"
)

// Listing offers ForSale in exchange for Ask.
type Listing struct {
	Creator          string        `json:"creator"`
	ID               uint64        `json:"id"`
	Status           Status        `json:"status"`
	Claimant         string        `json:"claimant,omitempty"`
	WhitelistedBuyer string        `json:"whitelisted_buyer,omitempty"`
	ForSale          *asset.Bundle `json:"for_sale"`
	Ask              *asset.Bundle `json:"ask"`
	FeeAmount        *asset.Coin   `json:"fee_amount,omitempty"`
	FinalizedAt      int64         `json:"finalized_at,omitempty"`
	ExpiresAt        int64         `json:"expires_at,omitempty"`
}

// NewListing returns an open listing with an empty ask.
func NewListing(creator string, id uint64, forSale *asset.Bundle) *Listing {
	return &Listing{
		Creator: creator,
		ID:      id,
		Status:  StatusOpen,
		ForSale: forSale,
		Ask:     asset.NewBundle(),
	}
}

// IsClaimed reports whether the listing has been bought.
func (l *Listing) IsClaimed() bool {
	return l.Claimant != ""
}

// IsFinalized reports whether the listing was ever finalized.
func (l *Listing) IsFinalized() bool {
	return l.FinalizedAt != 0
}

// IsExpired reports whether a finalized listing has passed its expiry at now.
func (l *Listing) IsExpired(now int64) bool {
	return l.IsFinalized() && now >= l.ExpiresAt
}

// Bucket holds a buyer's payment.
type Bucket struct {
	Owner     string        `json:"owner"`
	ID        uint64        `json:"id"`
	Funds     *asset.Bundle `json:"funds"`
	FeeAmount *asset.Coin   `json:"fee_amount,omitempty"`
	Claimed   bool          `json:"claimed"`
}

// Attribute is a key/value pair describing an operation's outcome.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Result is what a committed operation hands back to the host.
type Result struct {
	Action       string              `json:"action"`
	Sender       string              `json:"sender"`
	ListingID    uint64              `json:"listing_id,omitempty"`
	BucketID     uint64              `json:"bucket_id,omitempty"`
	Instructions []asset.Instruction `json:"instructions"`
	Attributes   []Attribute         `json:"attributes"`
	Env          Env                 `json:"env"`
}

func newResult(action, sender string) *Result {
	return &Result{
		Action:       action,
		Sender:       sender,
		Instructions: []asset.Instruction{},
		Attributes:   []Attribute{},
	}
}

func (r *Result) addAttribute(key, value string) {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
}

// Attribute returns the value of key, or "" when absent.
func (r *Result) Attribute(key string) string {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

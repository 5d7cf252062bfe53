package market

import (
	"context"
	"fmt"
	"strconv"

	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/fee"
	"github.com/LeJamon/goMarketd/internal/core/royalty"
)

// Attribute keys emitted by a purchase.
const (
	AttrSeller           = "seller"
	AttrBuyer            = "buyer"
	AttrListingFee       = "listing_fee"
	AttrBucketFee        = "bucket_fee"
	AttrSellerRoyaltyBps = "seller_royalty_bps"
	AttrBuyerRoyaltyBps  = "buyer_royalty_bps"
	AttrFeeDenom         = "fee_denom"
)

// BuyListing swaps the sender's bucket for a listing whose ask it matches
// exactly. The listing is rekeyed to the buyer as claimant and the bucket to
// the seller, with fees and royalties deducted on both sides.
func (e *Engine) BuyListing(ctx context.Context, env Env, sender string, listingID, bucketID uint64) (*Result, error) {
	return e.apply(ctx, env, "buy_listing", sender, func(ac *ApplyContext) error {
		return ac.buy(listingID, bucketID)
	})
}

// checkPurchasable runs the buy preconditions in order.
func (ac *ApplyContext) checkPurchasable(listingID, bucketID uint64) (*Listing, *Bucket, error) {
	bucket, err := ac.Buckets.Get(ac.Sender, bucketID)
	if err != nil {
		return nil, nil, err
	}
	listing, err := ac.Listings.GetByID(listingID)
	if err != nil {
		return nil, nil, err
	}
	if err := ac.authorize(bucket.Owner, "bucket owner"); err != nil {
		return nil, nil, err
	}
	if bucket.Claimed {
		return nil, nil, fmt.Errorf("%w: bucket %d is claimed", ErrUnauthorized, bucketID)
	}
	if !bucket.Funds.MultisetEquals(listing.Ask) {
		return nil, nil, fmt.Errorf("%w: listing %d, bucket %d", ErrAskMismatch, listingID, bucketID)
	}

	switch listing.Status {
	case StatusOpen:
		if ac.engine.cfg.RequireFinalize {
			return nil, nil, fmt.Errorf("%w: listing %d is not finalized", ErrNotPurchasable, listingID)
		}
	case StatusFinalizedReady:
		if listing.IsExpired(ac.Env.Now) {
			return nil, nil, fmt.Errorf("%w: listing %d expired at %d", ErrExpired, listingID, listing.ExpiresAt)
		}
	default:
		return nil, nil, fmt.Errorf("%w: listing %d is %s", ErrNotPurchasable, listingID, listing.Status)
	}
	if listing.IsClaimed() {
		return nil, nil, fmt.Errorf("%w: listing %d already claimed", ErrNotPurchasable, listingID)
	}
	if listing.WhitelistedBuyer != "" && listing.WhitelistedBuyer != ac.Sender {
		return nil, nil, fmt.Errorf("%w: listing %d is reserved for another buyer", ErrUnauthorized, listingID)
	}
	return listing, bucket, nil
}

func (ac *ApplyContext) buy(listingID, bucketID uint64) error {
	listing, bucket, err := ac.checkPurchasable(listingID, bucketID)
	if err != nil {
		return err
	}

	active := ac.ActiveFeeDenom()
	listingFee, listingBalance := fee.ComputeFee(active, listing.ForSale)
	bucketFee, bucketBalance := fee.ComputeFee(active, bucket.Funds)

	// The seller disposes of the listing's NFTs, so their collections take
	// their cut from the proceeds; the buyer's NFT collections take theirs
	// from what the buyer receives.
	sellerRoyalties, sellerBps, err := ac.royalties(listing.ForSale.NftContracts(), bucketBalance)
	if err != nil {
		return fmt.Errorf("seller side: %w", err)
	}
	buyerRoyalties, buyerBps, err := ac.royalties(bucket.Funds.NftContracts(), listingBalance)
	if err != nil {
		return fmt.Errorf("buyer side: %w", err)
	}

	seller := listing.Creator
	buyer := ac.Sender

	if err := ac.Listings.Delete(listing); err != nil {
		return err
	}
	claimed := &Listing{
		Creator:          buyer,
		ID:               listing.ID,
		Status:           StatusClosed,
		Claimant:         buyer,
		WhitelistedBuyer: listing.WhitelistedBuyer,
		ForSale:          listingBalance,
		Ask:              listing.Ask,
		FeeAmount:        listingFee,
		FinalizedAt:      listing.FinalizedAt,
		ExpiresAt:        listing.ExpiresAt,
	}
	if err := ac.Listings.Insert(claimed); err != nil {
		return err
	}

	if err := ac.Buckets.Delete(bucket); err != nil {
		return err
	}
	proceeds := &Bucket{
		Owner:     seller,
		ID:        bucket.ID,
		Funds:     bucketBalance,
		FeeAmount: bucketFee,
		Claimed:   true,
	}
	if err := ac.Buckets.Insert(proceeds); err != nil {
		return err
	}

	r := ac.Result
	r.ListingID = listingID
	r.BucketID = bucketID
	r.Instructions = append(r.Instructions, sellerRoyalties...)
	r.Instructions = append(r.Instructions, buyerRoyalties...)
	r.addAttribute(AttrSeller, seller)
	r.addAttribute(AttrBuyer, buyer)
	r.addAttribute(AttrFeeDenom, active)
	r.addAttribute(AttrListingFee, coinString(listingFee))
	r.addAttribute(AttrBucketFee, coinString(bucketFee))
	r.addAttribute(AttrSellerRoyaltyBps, strconv.FormatUint(uint64(sellerBps), 10))
	r.addAttribute(AttrBuyerRoyaltyBps, strconv.FormatUint(uint64(buyerBps), 10))
	return nil
}

// royalties deducts the royalties registered for collections from balance.
func (ac *ApplyContext) royalties(collections []string, balance *asset.Bundle) ([]asset.Instruction, uint32, error) {
	if len(collections) == 0 {
		return nil, 0, nil
	}
	regs, err := ac.Royalties.LookupMany(collections)
	if err != nil {
		return nil, 0, generic("royalty lookup: %v", err)
	}
	return balance.Royalties(royalty.Shares(regs), ac.engine.cfg.RoyaltyCapBps)
}

func coinString(c *asset.Coin) string {
	if c == nil {
		return ""
	}
	return c.String()
}

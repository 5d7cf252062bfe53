package market

import (
	"context"
	"fmt"
)

// WithdrawPurchased releases a bought listing's assets to its claimant and
// pays the listing-side fee to the fee sink.
func (e *Engine) WithdrawPurchased(ctx context.Context, env Env, sender string, id uint64) (*Result, error) {
	return e.apply(ctx, env, "withdraw_purchased", sender, func(ac *ApplyContext) error {
		return ac.withdrawPurchased(id)
	})
}

func (ac *ApplyContext) withdrawPurchased(id uint64) error {
	l, err := ac.Listings.GetByID(id)
	if err != nil {
		return err
	}
	if !l.IsClaimed() {
		return fmt.Errorf("%w: listing %d has no claimant", ErrUnauthorized, id)
	}
	if err := ac.authorize(l.Claimant, "listing claimant"); err != nil {
		return err
	}
	if l.Status != StatusClosed {
		return fmt.Errorf("%w: listing %d is %s", ErrInvalidStatus, id, l.Status)
	}
	if err := ac.Listings.Delete(l); err != nil {
		return err
	}

	r := ac.Result
	r.ListingID = id
	r.Instructions = append(r.Instructions, l.ForSale.Instructions(ac.Sender)...)
	if l.FeeAmount != nil {
		ins, err := ac.engine.sink.Transfer(*l.FeeAmount)
		if err != nil {
			return generic("fee sink: %v", err)
		}
		r.Instructions = append(r.Instructions, ins)
	}
	return nil
}

// RemoveBucket releases a bucket's funds to its current owner: the buyer
// cancelling an unused bucket, or the seller collecting proceeds. A fee
// recorded at purchase goes to the fee sink.
func (e *Engine) RemoveBucket(ctx context.Context, env Env, sender string, id uint64) (*Result, error) {
	return e.apply(ctx, env, "remove_bucket", sender, func(ac *ApplyContext) error {
		return ac.removeBucket(id)
	})
}

func (ac *ApplyContext) removeBucket(id uint64) error {
	b, err := ac.Buckets.GetByID(id)
	if err != nil {
		return err
	}
	if err := ac.authorize(b.Owner, "bucket owner"); err != nil {
		return err
	}
	if err := ac.Buckets.Delete(b); err != nil {
		return err
	}

	r := ac.Result
	r.BucketID = id
	r.Instructions = append(r.Instructions, b.Funds.Instructions(ac.Sender)...)
	if b.FeeAmount != nil {
		ins, err := ac.engine.sink.Transfer(*b.FeeAmount)
		if err != nil {
			return generic("fee sink: %v", err)
		}
		r.Instructions = append(r.Instructions, ins)
	}
	return nil
}

package market

import (
	"context"
	"fmt"
	"strconv"

	"github.com/LeJamon/goMarketd/internal/core/asset"
)

// CreateBucketMsg opens a bucket. A zero ID selects the next free id.
type CreateBucketMsg struct {
	ID uint64 `json:"id,omitempty"`
}

// CreateBucket deposits funds into a new bucket owned by sender.
func (e *Engine) CreateBucket(ctx context.Context, env Env, sender string, msg CreateBucketMsg, funds *asset.Bundle) (*Result, error) {
	return e.apply(ctx, env, "create_bucket", sender, func(ac *ApplyContext) error {
		return ac.createBucket(msg, funds)
	})
}

func (ac *ApplyContext) createBucket(msg CreateBucketMsg, funds *asset.Bundle) error {
	if err := funds.CheckValid(); err != nil {
		return err
	}
	id, err := ac.claimID(ac.BucketIDs, ac.Buckets.Exists, msg.ID)
	if err != nil {
		return err
	}
	b := &Bucket{Owner: ac.Sender, ID: id, Funds: funds.Clone()}
	if err := ac.Buckets.Insert(b); err != nil {
		return err
	}
	ac.Result.BucketID = id
	ac.Result.addAttribute("bucket_id", strconv.FormatUint(id, 10))
	return nil
}

// AddToBucket deposits more funds into an unclaimed bucket.
func (e *Engine) AddToBucket(ctx context.Context, env Env, sender string, id uint64, funds *asset.Bundle) (*Result, error) {
	return e.apply(ctx, env, "add_to_bucket", sender, func(ac *ApplyContext) error {
		return ac.addToBucket(id, funds)
	})
}

func (ac *ApplyContext) addToBucket(id uint64, funds *asset.Bundle) error {
	if err := funds.CheckValid(); err != nil {
		return err
	}
	b, err := ac.Buckets.GetByID(id)
	if err != nil {
		return err
	}
	if err := ac.authorize(b.Owner, "bucket owner"); err != nil {
		return err
	}
	if b.Claimed {
		return fmt.Errorf("%w: bucket %d is claimed", ErrInvalidStatus, id)
	}
	merged, err := addFunds(b.Funds, funds)
	if err != nil {
		return err
	}
	b.Funds = merged
	if err := ac.Buckets.Save(b); err != nil {
		return err
	}
	ac.Result.BucketID = id
	ac.Result.addAttribute("bucket_id", strconv.FormatUint(id, 10))
	return nil
}

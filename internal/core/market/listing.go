package market

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/ids"
)

// CreateListingMsg opens a listing. A zero ID selects the next free id.
type CreateListingMsg struct {
	ID               uint64        `json:"id,omitempty"`
	Ask              *asset.Bundle `json:"ask,omitempty"`
	WhitelistedBuyer string        `json:"whitelisted_buyer,omitempty"`
}

// CreateListing opens a listing offering funds.
func (e *Engine) CreateListing(ctx context.Context, env Env, sender string, msg CreateListingMsg, funds *asset.Bundle) (*Result, error) {
	return e.apply(ctx, env, "create_listing", sender, func(ac *ApplyContext) error {
		return ac.createListing(msg, funds)
	})
}

func (ac *ApplyContext) createListing(msg CreateListingMsg, funds *asset.Bundle) error {
	if err := funds.CheckValid(); err != nil {
		return err
	}
	if msg.Ask != nil && !msg.Ask.IsEmpty() {
		if err := msg.Ask.CheckValid(); err != nil {
			return fmt.Errorf("ask: %w", err)
		}
	}
	if len(msg.WhitelistedBuyer) > MaxAddressLength {
		return fmt.Errorf("%w: whitelisted buyer address too long", ErrUnauthorized)
	}

	id, err := ac.claimID(ac.ListingIDs, ac.Listings.Exists, msg.ID)
	if err != nil {
		return err
	}

	l := NewListing(ac.Sender, id, funds.Clone())
	if msg.Ask != nil {
		l.Ask = msg.Ask.Clone()
	}
	l.WhitelistedBuyer = msg.WhitelistedBuyer
	if err := ac.Listings.Insert(l); err != nil {
		return err
	}

	ac.Result.ListingID = id
	ac.Result.addAttribute("listing_id", strconv.FormatUint(id, 10))
	return nil
}

// claimID allocates an id, or validates and records a requested one.
func (ac *ApplyContext) claimID(reg *ids.Registry, live func(uint64) (bool, error), requested uint64) (uint64, error) {
	if requested == 0 {
		id, err := reg.Allocate()
		if err != nil {
			return 0, mapIDError(err)
		}
		return id, nil
	}
	exists, err := live(requested)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("%w: %d is live", ErrIdAlreadyExists, requested)
	}
	if err := reg.MarkUsed(requested); err != nil {
		return 0, mapIDError(err)
	}
	return requested, nil
}

func mapIDError(err error) error {
	if errors.Is(err, ids.ErrUsed) || errors.Is(err, ids.ErrOutOfRange) {
		return fmt.Errorf("%w: %v", ErrIdAlreadyExists, err)
	}
	return generic("id allocation: %v", err)
}

// loadMutableListing loads a listing the sender may still modify: created
// by the sender, unclaimed and open.
func (ac *ApplyContext) loadMutableListing(id uint64) (*Listing, error) {
	l, err := ac.Listings.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := ac.authorize(l.Creator, "listing creator"); err != nil {
		return nil, err
	}
	if l.IsClaimed() || l.Status == StatusClosed {
		return nil, fmt.Errorf("%w: listing %d is claimed", ErrInvalidStatus, id)
	}
	if l.Status == StatusFinalizedReady || l.IsFinalized() {
		return nil, fmt.Errorf("%w: listing %d", ErrAlreadyFinalized, id)
	}
	if l.Status != StatusOpen {
		return nil, fmt.Errorf("%w: listing %d is %s", ErrInvalidStatus, id, l.Status)
	}
	return l, nil
}

// AddToListing adds funds to an open listing.
func (e *Engine) AddToListing(ctx context.Context, env Env, sender string, id uint64, funds *asset.Bundle) (*Result, error) {
	return e.apply(ctx, env, "add_to_listing", sender, func(ac *ApplyContext) error {
		return ac.addToListing(id, funds)
	})
}

func (ac *ApplyContext) addToListing(id uint64, funds *asset.Bundle) error {
	if err := funds.CheckValid(); err != nil {
		return err
	}
	l, err := ac.loadMutableListing(id)
	if err != nil {
		return err
	}
	merged, err := addFunds(l.ForSale, funds)
	if err != nil {
		return err
	}
	l.ForSale = merged
	if err := ac.Listings.Save(l); err != nil {
		return err
	}
	ac.Result.ListingID = id
	ac.Result.addAttribute("listing_id", strconv.FormatUint(id, 10))
	return nil
}

// addFunds merges funds into a copy of balance and validates the result.
func addFunds(balance, funds *asset.Bundle) (*asset.Bundle, error) {
	merged := balance.Clone()
	merged.Merge(funds)
	if merged.MultisetEquals(balance) {
		return nil, ErrErrorAdding
	}
	if err := merged.CheckValid(); err != nil {
		return nil, err
	}
	return merged, nil
}

// ChangeAsk replaces the ask of an open listing.
func (e *Engine) ChangeAsk(ctx context.Context, env Env, sender string, id uint64, ask *asset.Bundle) (*Result, error) {
	return e.apply(ctx, env, "change_ask", sender, func(ac *ApplyContext) error {
		if err := ask.CheckValid(); err != nil {
			return err
		}
		l, err := ac.loadMutableListing(id)
		if err != nil {
			return err
		}
		l.Ask = ask.Clone()
		ac.Result.ListingID = id
		return ac.Listings.Save(l)
	})
}

// FinalizeListing freezes an open listing for ttl seconds, after which it
// expires.
func (e *Engine) FinalizeListing(ctx context.Context, env Env, sender string, id uint64, ttl int64) (*Result, error) {
	return e.apply(ctx, env, "finalize_listing", sender, func(ac *ApplyContext) error {
		return ac.finalizeListing(id, ttl)
	})
}

func (ac *ApplyContext) finalizeListing(id uint64, ttl int64) error {
	l, err := ac.loadMutableListing(id)
	if err != nil {
		return err
	}
	if ttl < MinTTL || ttl > MaxTTL {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidTTL, ttl, MinTTL, MaxTTL)
	}
	l.FinalizedAt = ac.Env.Now
	l.ExpiresAt = ac.Env.Now + ttl
	l.Status = StatusFinalizedReady
	if err := ac.Listings.Save(l); err != nil {
		return err
	}
	ac.Result.ListingID = id
	ac.Result.addAttribute("expires_at", strconv.FormatInt(l.ExpiresAt, 10))
	return nil
}

// SetWhitelist restricts who may buy an open listing. An empty buyer clears
// the restriction.
func (e *Engine) SetWhitelist(ctx context.Context, env Env, sender string, id uint64, buyer string) (*Result, error) {
	return e.apply(ctx, env, "set_whitelist", sender, func(ac *ApplyContext) error {
		if len(buyer) > MaxAddressLength {
			return fmt.Errorf("%w: whitelisted buyer address too long", ErrUnauthorized)
		}
		l, err := ac.loadMutableListing(id)
		if err != nil {
			return err
		}
		l.WhitelistedBuyer = buyer
		ac.Result.ListingID = id
		return ac.Listings.Save(l)
	})
}

// RemoveListing returns an unsold listing's assets to its creator. A
// finalized listing can only be removed once it has expired.
func (e *Engine) RemoveListing(ctx context.Context, env Env, sender string, id uint64) (*Result, error) {
	return e.apply(ctx, env, "remove_listing", sender, func(ac *ApplyContext) error {
		return ac.removeListing(id)
	})
}

func (ac *ApplyContext) removeListing(id uint64) error {
	l, err := ac.Listings.GetByID(id)
	if err != nil {
		return err
	}
	if err := ac.authorize(l.Creator, "listing creator"); err != nil {
		return err
	}
	if l.IsClaimed() || l.Status == StatusClosed {
		return fmt.Errorf("%w: listing %d is claimed", ErrInvalidStatus, id)
	}
	if l.IsFinalized() && !l.IsExpired(ac.Env.Now) {
		return fmt.Errorf("%w: listing %d expires at %d", ErrNotExpired, id, l.ExpiresAt)
	}
	if err := ac.Listings.Delete(l); err != nil {
		return err
	}
	ac.Result.ListingID = id
	ac.Result.Instructions = append(ac.Result.Instructions, l.ForSale.Instructions(ac.Sender)...)
	return nil
}

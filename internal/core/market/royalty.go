package market

import (
	"context"
	"strconv"
)

// RoyaltyMsg registers or updates a collection's royalty.
type RoyaltyMsg struct {
	Collection string `json:"nft_collection"`
	Payout     string `json:"payout_address"`
	Bps        uint32 `json:"bps"`
}

// RegisterRoyalty creates a royalty registration. Only the collection's
// minter may call it.
func (e *Engine) RegisterRoyalty(ctx context.Context, env Env, sender string, msg RoyaltyMsg) (*Result, error) {
	return e.apply(ctx, env, "register_royalty", sender, func(ac *ApplyContext) error {
		reg, err := ac.Royalties.Register(ac.Context, ac.Env.Height, ac.Sender, msg.Collection, msg.Payout, msg.Bps)
		if err != nil {
			return err
		}
		ac.Result.addAttribute("nft_collection", reg.Collection)
		ac.Result.addAttribute("bps", strconv.FormatUint(uint64(reg.Bps), 10))
		return nil
	})
}

// UpdateRoyalty changes an existing registration.
func (e *Engine) UpdateRoyalty(ctx context.Context, env Env, sender string, msg RoyaltyMsg) (*Result, error) {
	return e.apply(ctx, env, "update_royalty", sender, func(ac *ApplyContext) error {
		reg, err := ac.Royalties.Update(ac.Context, ac.Env.Height, ac.Sender, msg.Collection, msg.Payout, msg.Bps)
		if err != nil {
			return err
		}
		ac.Result.addAttribute("nft_collection", reg.Collection)
		ac.Result.addAttribute("bps", strconv.FormatUint(uint64(reg.Bps), 10))
		return nil
	})
}

// RemoveRoyalty deletes a registration.
func (e *Engine) RemoveRoyalty(ctx context.Context, env Env, sender, collection string) (*Result, error) {
	return e.apply(ctx, env, "remove_royalty", sender, func(ac *ApplyContext) error {
		if err := ac.Royalties.Remove(ac.Context, ac.Sender, collection); err != nil {
			return err
		}
		ac.Result.addAttribute("nft_collection", collection)
		return nil
	})
}

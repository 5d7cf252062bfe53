package market

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/LeJamon/goMarketd/internal/core/asset"
)

// ReceiveMsg is the instruction payload attached to a token or NFT deposit.
// Exactly one field must be set.
type ReceiveMsg struct {
	CreateListing *CreateListingMsg `json:"create_listing,omitempty"`
	AddToListing  *IDMsg            `json:"add_to_listing,omitempty"`
	CreateBucket  *CreateBucketMsg  `json:"create_bucket,omitempty"`
	AddToBucket   *IDMsg            `json:"add_to_bucket,omitempty"`
}

// IDMsg addresses an existing listing or bucket.
type IDMsg struct {
	ID uint64 `json:"id"`
}

// DecodeReceiveMsg parses a deposit payload.
func DecodeReceiveMsg(payload []byte) (*ReceiveMsg, error) {
	var msg ReceiveMsg
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, generic("invalid receive payload: %v", err)
	}
	set := 0
	for _, present := range []bool{msg.CreateListing != nil, msg.AddToListing != nil, msg.CreateBucket != nil, msg.AddToBucket != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, generic("receive payload must hold exactly one instruction, got %d", set)
	}
	return &msg, nil
}

// ReceiveTokens handles a fungible token deposit forwarded by contract on
// behalf of sender.
func (e *Engine) ReceiveTokens(ctx context.Context, env Env, contract, sender string, amount sdkmath.Uint, payload []byte) (*Result, error) {
	if _, err := e.inspector.TokenInfo(ctx, contract); err != nil {
		return nil, fmt.Errorf("%w: %s is not a token contract: %v", ErrUnauthorized, contract, err)
	}
	funds := asset.NewBundle()
	funds.AddToken(asset.TokenAmount{Contract: contract, Amount: amount})
	return e.receive(ctx, env, sender, funds, payload)
}

// ReceiveNft handles an NFT deposit forwarded by contract on behalf of
// sender.
func (e *Engine) ReceiveNft(ctx context.Context, env Env, contract, sender, tokenID string, payload []byte) (*Result, error) {
	if _, err := e.inspector.NftContractInfo(ctx, contract); err != nil {
		return nil, fmt.Errorf("%w: %s is not an nft contract: %v", ErrUnauthorized, contract, err)
	}
	funds := asset.NewBundle()
	funds.AddNft(asset.NftRef{Contract: contract, TokenID: tokenID})
	return e.receive(ctx, env, sender, funds, payload)
}

func (e *Engine) receive(ctx context.Context, env Env, sender string, funds *asset.Bundle, payload []byte) (*Result, error) {
	msg, err := DecodeReceiveMsg(payload)
	if err != nil {
		return nil, err
	}
	switch {
	case msg.CreateListing != nil:
		return e.CreateListing(ctx, env, sender, *msg.CreateListing, funds)
	case msg.AddToListing != nil:
		return e.AddToListing(ctx, env, sender, msg.AddToListing.ID, funds)
	case msg.CreateBucket != nil:
		return e.CreateBucket(ctx, env, sender, *msg.CreateBucket, funds)
	default:
		return e.AddToBucket(ctx, env, sender, msg.AddToBucket.ID, funds)
	}
}

package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

// CreateBucketMethod handles the create_bucket RPC method
type CreateBucketMethod struct{ adminMethod }

func (m *CreateBucketMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Sender string        `json:"sender"`
		ID     uint64        `json:"id"`
		Funds  *asset.Bundle `json:"funds"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireSender(request.Sender); rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	msg := market.CreateBucketMsg{ID: request.ID}
	return run(engine.CreateBucket(ctx.Context, env(ctx), request.Sender, msg, request.Funds))
}

// AddToBucketMethod handles the add_to_bucket RPC method
type AddToBucketMethod struct{ adminMethod }

func (m *AddToBucketMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Sender string        `json:"sender"`
		ID     uint64        `json:"id"`
		Funds  *asset.Bundle `json:"funds"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireSender(request.Sender); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireID("id", request.ID); rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.AddToBucket(ctx.Context, env(ctx), request.Sender, request.ID, request.Funds))
}

// RemoveBucketMethod handles the remove_bucket RPC method
type RemoveBucketMethod struct{ adminMethod }

func (m *RemoveBucketMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseIDRequest(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.RemoveBucket(ctx.Context, env(ctx), request.Sender, request.ID))
}

// BuyListingMethod handles the buy_listing RPC method
type BuyListingMethod struct{ adminMethod }

func (m *BuyListingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Sender    string `json:"sender"`
		ListingID uint64 `json:"listing_id"`
		BucketID  uint64 `json:"bucket_id"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireSender(request.Sender); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireID("listing_id", request.ListingID); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireID("bucket_id", request.BucketID); rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.BuyListing(ctx.Context, env(ctx), request.Sender, request.ListingID, request.BucketID))
}

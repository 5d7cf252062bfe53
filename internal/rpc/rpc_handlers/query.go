package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
	"github.com/LeJamon/goMarketd/internal/storage/history"
)

// PingMethod handles the ping RPC method
type PingMethod struct{ guestMethod }

func (m *PingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return map[string]interface{}{}, nil
}

type ownerPageRequest struct {
	Owner string `json:"owner"`
	Page  int    `json:"page"`
}

func parseOwnerPage(params json.RawMessage) (*ownerPageRequest, *rpc_types.RpcError) {
	var request ownerPageRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Owner == "" {
		return nil, rpc_types.RpcErrorMissingField("owner")
	}
	if request.Page < 0 {
		return nil, rpc_types.RpcErrorInvalidField("page")
	}
	return &request, nil
}

// ListingsByOwnerMethod handles the listings_by_owner RPC method
type ListingsByOwnerMethod struct{ guestMethod }

func (m *ListingsByOwnerMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseOwnerPage(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	listings, err := engine.ListingsByOwner(ctx.Context, request.Owner, request.Page)
	if err != nil {
		return nil, MarketError(err)
	}
	return listingsResponse(listings, request.Page), nil
}

// BucketsByOwnerMethod handles the buckets_by_owner RPC method
type BucketsByOwnerMethod struct{ guestMethod }

func (m *BucketsByOwnerMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseOwnerPage(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	buckets, err := engine.BucketsByOwner(ctx.Context, request.Owner, request.Page)
	if err != nil {
		return nil, MarketError(err)
	}
	if buckets == nil {
		buckets = []*market.Bucket{}
	}
	return map[string]interface{}{
		"buckets": buckets,
		"page":    request.Page,
	}, nil
}

// ListingsForMarketMethod handles the listings_for_market RPC method
type ListingsForMarketMethod struct{ guestMethod }

func (m *ListingsForMarketMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Page int `json:"page"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Page < 0 {
		return nil, rpc_types.RpcErrorInvalidField("page")
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	listings, err := engine.ListingsForMarket(ctx.Context, env(ctx).Now, request.Page)
	if err != nil {
		return nil, MarketError(err)
	}
	return listingsResponse(listings, request.Page), nil
}

func listingsResponse(listings []*market.Listing, page int) map[string]interface{} {
	if listings == nil {
		listings = []*market.Listing{}
	}
	return map[string]interface{}{
		"listings": listings,
		"page":     page,
	}
}

// ListingMethod handles the listing RPC method
type ListingMethod struct{ guestMethod }

func (m *ListingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		ID uint64 `json:"id"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireID("id", request.ID); rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	listing, err := engine.Listing(ctx.Context, request.ID)
	if err != nil {
		return nil, MarketError(err)
	}
	return map[string]interface{}{"listing": listing}, nil
}

// BucketMethod handles the bucket RPC method
type BucketMethod struct{ guestMethod }

func (m *BucketMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		ID uint64 `json:"id"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireID("id", request.ID); rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	bucket, err := engine.Bucket(ctx.Context, request.ID)
	if err != nil {
		return nil, MarketError(err)
	}
	return map[string]interface{}{"bucket": bucket}, nil
}

// FeeDenomMethod handles the fee_denom RPC method
type FeeDenomMethod struct{ guestMethod }

func (m *FeeDenomMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	state, err := engine.FeeDenom(ctx.Context)
	if err != nil {
		return nil, MarketError(err)
	}
	return map[string]interface{}{
		"active":     state.Active,
		"denom_a":    state.DenomA,
		"denom_b":    state.DenomB,
		"last_cycle": state.LastCycle,
	}, nil
}

// RoyaltyMethod handles the royalty RPC method
type RoyaltyMethod struct{ guestMethod }

func (m *RoyaltyMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Collection string `json:"nft_collection"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Collection == "" {
		return nil, rpc_types.RpcErrorMissingField("nft_collection")
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	reg, err := engine.Royalty(ctx.Context, request.Collection)
	if err != nil {
		return nil, MarketError(err)
	}
	if reg == nil {
		return map[string]interface{}{"nft_collection": request.Collection, "registered": false}, nil
	}
	return map[string]interface{}{
		"nft_collection": reg.Collection,
		"registered":     true,
		"payout_address": reg.Payout,
		"bps":            reg.Bps,
		"last_updated":   reg.LastUpdated,
	}, nil
}

// SalesMethod handles the sales RPC method
type SalesMethod struct{ guestMethod }

func (m *SalesMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Seller string `json:"seller"`
		Buyer  string `json:"buyer"`
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Limit < 0 || request.Limit > 200 {
		return nil, rpc_types.RpcErrorInvalidField("limit")
	}
	if ctx.Services == nil || ctx.Services.History == nil {
		return nil, rpc_types.RpcErrorNotEnabled("history")
	}
	sales, err := ctx.Services.History.Sales(ctx.Context, history.Filter{
		Seller: request.Seller,
		Buyer:  request.Buyer,
		Limit:  request.Limit,
		Offset: request.Offset,
	})
	if err != nil {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}
	if sales == nil {
		sales = []*history.Sale{}
	}
	return map[string]interface{}{"sales": sales}, nil
}

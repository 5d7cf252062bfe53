package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

// CreateListingMethod handles the create_listing RPC method
type CreateListingMethod struct{ adminMethod }

func (m *CreateListingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Sender           string        `json:"sender"`
		ID               uint64        `json:"id"`
		Ask              *asset.Bundle `json:"ask"`
		WhitelistedBuyer string        `json:"whitelisted_buyer"`
		Funds            *asset.Bundle `json:"funds"`
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
	msg := market.CreateListingMsg{ID: request.ID, Ask: request.Ask, WhitelistedBuyer: request.WhitelistedBuyer}
	return run(engine.CreateListing(ctx.Context, env(ctx), request.Sender, msg, request.Funds))
}

// AddToListingMethod handles the add_to_listing RPC method
type AddToListingMethod struct{ adminMethod }

func (m *AddToListingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
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
	return run(engine.AddToListing(ctx.Context, env(ctx), request.Sender, request.ID, request.Funds))
}

// ChangeAskMethod handles the change_ask RPC method
type ChangeAskMethod struct{ adminMethod }

func (m *ChangeAskMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Sender string        `json:"sender"`
		ID     uint64        `json:"id"`
		Ask    *asset.Bundle `json:"ask"`
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
	if request.Ask == nil {
		return nil, rpc_types.RpcErrorMissingField("ask")
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.ChangeAsk(ctx.Context, env(ctx), request.Sender, request.ID, request.Ask))
}

// FinalizeListingMethod handles the finalize_listing RPC method
type FinalizeListingMethod struct{ adminMethod }

func (m *FinalizeListingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Sender  string `json:"sender"`
		ID      uint64 `json:"id"`
		Seconds int64  `json:"seconds"`
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
	return run(engine.FinalizeListing(ctx.Context, env(ctx), request.Sender, request.ID, request.Seconds))
}

// SetWhitelistMethod handles the set_whitelist RPC method. An empty buyer
// clears the whitelist.
type SetWhitelistMethod struct{ adminMethod }

func (m *SetWhitelistMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Sender string `json:"sender"`
		ID     uint64 `json:"id"`
		Buyer  string `json:"buyer"`
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
	return run(engine.SetWhitelist(ctx.Context, env(ctx), request.Sender, request.ID, request.Buyer))
}

// idRequest is the parameter shape of methods addressing one record
type idRequest struct {
	Sender string `json:"sender"`
	ID     uint64 `json:"id"`
}

func parseIDRequest(params json.RawMessage) (*idRequest, *rpc_types.RpcError) {
	var request idRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireSender(request.Sender); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireID("id", request.ID); rpcErr != nil {
		return nil, rpcErr
	}
	return &request, nil
}

// RemoveListingMethod handles the remove_listing RPC method
type RemoveListingMethod struct{ adminMethod }

func (m *RemoveListingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseIDRequest(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.RemoveListing(ctx.Context, env(ctx), request.Sender, request.ID))
}

// WithdrawPurchasedMethod handles the withdraw_purchased RPC method
type WithdrawPurchasedMethod struct{ adminMethod }

func (m *WithdrawPurchasedMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseIDRequest(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.WithdrawPurchased(ctx.Context, env(ctx), request.Sender, request.ID))
}

package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

type royaltyRequest struct {
	Sender string `json:"sender"`
	market.RoyaltyMsg
}

func parseRoyaltyRequest(params json.RawMessage) (*royaltyRequest, *rpc_types.RpcError) {
	var request royaltyRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireSender(request.Sender); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Collection == "" {
		return nil, rpc_types.RpcErrorMissingField("nft_collection")
	}
	return &request, nil
}

// RegisterRoyaltyMethod handles the register_royalty RPC method
type RegisterRoyaltyMethod struct{ adminMethod }

func (m *RegisterRoyaltyMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseRoyaltyRequest(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.RegisterRoyalty(ctx.Context, env(ctx), request.Sender, request.RoyaltyMsg))
}

// UpdateRoyaltyMethod handles the update_royalty RPC method
type UpdateRoyaltyMethod struct{ adminMethod }

func (m *UpdateRoyaltyMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseRoyaltyRequest(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.UpdateRoyalty(ctx.Context, env(ctx), request.Sender, request.RoyaltyMsg))
}

// RemoveRoyaltyMethod handles the remove_royalty RPC method
type RemoveRoyaltyMethod struct{ adminMethod }

func (m *RemoveRoyaltyMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseRoyaltyRequest(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.RemoveRoyalty(ctx.Context, env(ctx), request.Sender, request.Collection))
}

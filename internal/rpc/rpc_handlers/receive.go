package rpc_handlers

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"

	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

// ReceiveTokensMethod handles the receive_tokens RPC method: a token
// contract forwarding a deposit made by sender, with msg carrying the
// market instruction.
type ReceiveTokensMethod struct{ adminMethod }

func (m *ReceiveTokensMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Contract string          `json:"contract"`
		Sender   string          `json:"sender"`
		Amount   string          `json:"amount"`
		Msg      json.RawMessage `json:"msg"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Contract == "" {
		return nil, rpc_types.RpcErrorMissingField("contract")
	}
	if rpcErr := requireSender(request.Sender); rpcErr != nil {
		return nil, rpcErr
	}
	amount, err := sdkmath.ParseUint(request.Amount)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidField("amount")
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.ReceiveTokens(ctx.Context, env(ctx), request.Contract, request.Sender, amount, request.Msg))
}

// ReceiveNftMethod handles the receive_nft RPC method
type ReceiveNftMethod struct{ adminMethod }

func (m *ReceiveNftMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Contract string          `json:"contract"`
		Sender   string          `json:"sender"`
		TokenID  string          `json:"token_id"`
		Msg      json.RawMessage `json:"msg"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Contract == "" {
		return nil, rpc_types.RpcErrorMissingField("contract")
	}
	if rpcErr := requireSender(request.Sender); rpcErr != nil {
		return nil, rpcErr
	}
	if request.TokenID == "" {
		return nil, rpc_types.RpcErrorMissingField("token_id")
	}
	engine, rpcErr := requireMarket(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return run(engine.ReceiveNft(ctx.Context, env(ctx), request.Contract, request.Sender, request.TokenID, request.Msg))
}

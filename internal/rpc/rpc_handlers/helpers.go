package rpc_handlers

import (
	"encoding/json"
	"errors"

	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/core/royalty"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

var allVersions = []int{rpc_types.ApiVersion1}

// guestMethod is embedded by read-only methods
type guestMethod struct{}

func (guestMethod) RequiredRole() rpc_types.Role { return rpc_types.RoleGuest }
func (guestMethod) SupportedApiVersions() []int { return allVersions }

// adminMethod is embedded by methods that change market state
type adminMethod struct{}

func (adminMethod) RequiredRole() rpc_types.Role { return rpc_types.RoleAdmin }
func (adminMethod) SupportedApiVersions() []int { return allVersions }

// parseParams decodes params into dst. Missing params decode as an empty object.
func parseParams(params json.RawMessage, dst interface{}) *rpc_types.RpcError {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

func requireSender(sender string) *rpc_types.RpcError {
	if sender == "" {
		return rpc_types.RpcErrorMissingField("sender")
	}
	return nil
}

func requireID(field string, id uint64) *rpc_types.RpcError {
	if id == 0 {
		return rpc_types.RpcErrorMissingField(field)
	}
	return nil
}

func requireMarket(ctx *rpc_types.RpcContext) (*market.Engine, *rpc_types.RpcError) {
	if ctx.Services == nil || ctx.Services.Market == nil {
		return nil, rpc_types.RpcErrorInternal("Market service not available")
	}
	return ctx.Services.Market, nil
}

// env returns the invocation environment from the configured clock
func env(ctx *rpc_types.RpcContext) market.Env {
	return ctx.Services.Clock.Env()
}

// MarketError maps a market error to a stable RPC error.
func MarketError(err error) *rpc_types.RpcError {
	var nf *market.NotFound
	switch {
	case errors.As(err, &nf):
		return rpc_types.NewRpcError(rpc_types.RpcNOT_FOUND, "notFound", "notFound", err.Error())
	case errors.Is(err, market.ErrUnauthorized), errors.Is(err, royalty.ErrNotMinter):
		return rpc_types.NewRpcError(rpc_types.RpcUNAUTHORIZED, "unauthorized", "unauthorized", err.Error())
	case errors.Is(err, market.ErrIdAlreadyExists):
		return rpc_types.NewRpcError(rpc_types.RpcID_ALREADY_EXISTS, "idAlreadyExists", "idAlreadyExists", err.Error())
	case errors.Is(err, market.ErrAlreadyFinalized):
		return rpc_types.NewRpcError(rpc_types.RpcALREADY_FINALIZED, "alreadyFinalized", "alreadyFinalized", err.Error())
	case errors.Is(err, market.ErrInvalidStatus):
		return rpc_types.NewRpcError(rpc_types.RpcINVALID_STATUS, "invalidStatus", "invalidStatus", err.Error())
	case errors.Is(err, market.ErrErrorAdding):
		return rpc_types.NewRpcError(rpc_types.RpcERROR_ADDING, "errorAdding", "errorAdding", err.Error())
	case errors.Is(err, asset.ErrInvalidBalance):
		return rpc_types.NewRpcError(rpc_types.RpcINVALID_BALANCE, "invalidBalance", "invalidBalance", err.Error())
	case errors.Is(err, asset.ErrRoyaltyCapExceeded):
		return rpc_types.NewRpcError(rpc_types.RpcROYALTY_CAP, "royaltyCapExceeded", "royaltyCapExceeded", err.Error())
	case errors.Is(err, market.ErrExpired):
		return rpc_types.NewRpcError(rpc_types.RpcEXPIRED, "expired", "expired", err.Error())
	case errors.Is(err, market.ErrNotExpired):
		return rpc_types.NewRpcError(rpc_types.RpcNOT_EXPIRED, "notExpired", "notExpired", err.Error())
	case errors.Is(err, market.ErrNotPurchasable):
		return rpc_types.NewRpcError(rpc_types.RpcNOT_PURCHASABLE, "notPurchasable", "notPurchasable", err.Error())
	case errors.Is(err, market.ErrAskMismatch):
		return rpc_types.NewRpcError(rpc_types.RpcASK_MISMATCH, "askMismatch", "askMismatch", err.Error())
	case errors.Is(err, market.ErrInvalidTTL):
		return rpc_types.NewRpcError(rpc_types.RpcINVALID_TTL, "invalidTtl", "invalidTtl", err.Error())
	case errors.Is(err, royalty.ErrInvalidBps), errors.Is(err, royalty.ErrInvalidPayout),
		errors.Is(err, royalty.ErrAlreadyRegistered), errors.Is(err, royalty.ErrNotRegistered):
		return rpc_types.NewRpcError(rpc_types.RpcROYALTY_INVALID, "royaltyInvalid", "royaltyInvalid", err.Error())
	case errors.Is(err, royalty.ErrCooldown):
		return rpc_types.NewRpcError(rpc_types.RpcROYALTY_COOLDOWN, "royaltyCooldown", "royaltyCooldown", err.Error())
	default:
		return rpc_types.NewRpcError(rpc_types.RpcGENERIC, "generic", "generic", err.Error())
	}
}

// resultResponse renders a committed operation
func resultResponse(res *market.Result) map[string]interface{} {
	response := map[string]interface{}{
		"action":       res.Action,
		"instructions": res.Instructions,
		"attributes":   res.Attributes,
		"now":          res.Env.Now,
		"height":       res.Env.Height,
	}
	if res.Instructions == nil {
		response["instructions"] = []asset.Instruction{}
	}
	if res.ListingID != 0 {
		response["listing_id"] = res.ListingID
	}
	if res.BucketID != 0 {
		response["bucket_id"] = res.BucketID
	}
	return response
}

// run executes a market operation and renders its result
func run(res *market.Result, err error) (interface{}, *rpc_types.RpcError) {
	if err != nil {
		return nil, MarketError(err)
	}
	return resultResponse(res), nil
}

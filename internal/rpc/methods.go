package rpc

import (
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_handlers"
)

// registerAllMethods registers all market RPC methods
func (s *Server) registerAllMethods() {
	// Listing Methods
	s.registry.Register("create_listing", &rpc_handlers.CreateListingMethod{})
	s.registry.Register("add_to_listing", &rpc_handlers.AddToListingMethod{})
	s.registry.Register("change_ask", &rpc_handlers.ChangeAskMethod{})
	s.registry.Register("finalize_listing", &rpc_handlers.FinalizeListingMethod{})
	s.registry.Register("set_whitelist", &rpc_handlers.SetWhitelistMethod{})
	s.registry.Register("remove_listing", &rpc_handlers.RemoveListingMethod{})
	s.registry.Register("withdraw_purchased", &rpc_handlers.WithdrawPurchasedMethod{})

	// Bucket Methods
	s.registry.Register("create_bucket", &rpc_handlers.CreateBucketMethod{})
	s.registry.Register("add_to_bucket", &rpc_handlers.AddToBucketMethod{})
	s.registry.Register("remove_bucket", &rpc_handlers.RemoveBucketMethod{})
	s.registry.Register("buy_listing", &rpc_handlers.BuyListingMethod{})

	// Deposit hooks
	s.registry.Register("receive_tokens", &rpc_handlers.ReceiveTokensMethod{})
	s.registry.Register("receive_nft", &rpc_handlers.ReceiveNftMethod{})

	// Royalty Methods
	s.registry.Register("register_royalty", &rpc_handlers.RegisterRoyaltyMethod{})
	s.registry.Register("update_royalty", &rpc_handlers.UpdateRoyaltyMethod{})
	s.registry.Register("remove_royalty", &rpc_handlers.RemoveRoyaltyMethod{})

	// Queries
	s.registry.Register("listings_by_owner", &rpc_handlers.ListingsByOwnerMethod{})
	s.registry.Register("buckets_by_owner", &rpc_handlers.BucketsByOwnerMethod{})
	s.registry.Register("listings_for_market", &rpc_handlers.ListingsForMarketMethod{})
	s.registry.Register("listing", &rpc_handlers.ListingMethod{})
	s.registry.Register("bucket", &rpc_handlers.BucketMethod{})
	s.registry.Register("fee_denom", &rpc_handlers.FeeDenomMethod{})
	s.registry.Register("royalty", &rpc_handlers.RoyaltyMethod{})
	s.registry.Register("sales", &rpc_handlers.SalesMethod{})
	s.registry.Register("ping", &rpc_handlers.PingMethod{})
}

package config

import (
	"fmt"

	"github.com/LeJamon/goMarketd/internal/core/royalty"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := config.GRPC.Validate(); err != nil {
		return fmt.Errorf("grpc config validation failed: %w", err)
	}
	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}
	if err := config.History.Validate(); err != nil {
		return fmt.Errorf("history validation failed: %w", err)
	}
	if err := config.Market.Validate(); err != nil {
		return fmt.Errorf("market validation failed: %w", err)
	}
	if err := config.Contracts.Validate(); err != nil {
		return fmt.Errorf("contracts validation failed: %w", err)
	}
	return nil
}

// Validate performs validation on the market configuration
func (m *MarketConfig) Validate() error {
	if m.FeeDenomA == "" || m.FeeDenomB == "" {
		return fmt.Errorf("fee_denom_a and fee_denom_b are required")
	}
	if m.FeeDenomA == m.FeeDenomB {
		return fmt.Errorf("fee denoms must differ, both are %s", m.FeeDenomA)
	}
	switch m.FeeSink {
	case FeeSinkCommunityPool, FeeSinkAddress:
	default:
		return fmt.Errorf("invalid fee_sink: %s (valid options: community_pool, address)", m.FeeSink)
	}
	if m.FeeSinkAddress == "" {
		return fmt.Errorf("fee_sink_address is required")
	}
	if m.FeeCycleSeconds < 1 {
		return fmt.Errorf("fee_cycle_seconds must be positive, got %d", m.FeeCycleSeconds)
	}
	if m.MaxID < 1 {
		return fmt.Errorf("max_id must be positive")
	}
	// a single collection at the maximum rate must fit under the cap
	if m.RoyaltyCapBps < royalty.MaxBps || m.RoyaltyCapBps > 10000 {
		return fmt.Errorf("royalty_cap_bps must be between %d and 10000, got %d", royalty.MaxBps, m.RoyaltyCapBps)
	}
	if m.GenesisTime < 1 {
		return fmt.Errorf("genesis_time must be a positive unix timestamp, got %d", m.GenesisTime)
	}
	if m.BlockTimeSeconds < 1 {
		return fmt.Errorf("block_time_seconds must be positive, got %d", m.BlockTimeSeconds)
	}
	if m.RoyaltyCacheSize < 0 {
		return fmt.Errorf("royalty_cache_size must be non-negative, got %d", m.RoyaltyCacheSize)
	}
	return nil
}

// Validate checks contract addresses are set and unique across kinds
func (c *ContractsConfig) Validate() error {
	seen := make(map[string]bool)
	for _, t := range c.Tokens {
		if t.Address == "" {
			return fmt.Errorf("token contract address is required")
		}
		if seen[t.Address] {
			return fmt.Errorf("duplicate contract: %s", t.Address)
		}
		seen[t.Address] = true
	}
	for _, n := range c.Nfts {
		if n.Address == "" {
			return fmt.Errorf("nft contract address is required")
		}
		if n.Minter == "" {
			return fmt.Errorf("nft contract %s has no minter", n.Address)
		}
		if seen[n.Address] {
			return fmt.Errorf("duplicate contract: %s", n.Address)
		}
		seen[n.Address] = true
	}
	return nil
}

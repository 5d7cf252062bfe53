package config

import (
	"github.com/LeJamon/goMarketd/internal/core/contracts"
	"github.com/LeJamon/goMarketd/internal/core/fee"
	"github.com/LeJamon/goMarketd/internal/core/market"
)

// EngineConfig converts the section into market engine parameters
func (m *MarketConfig) EngineConfig() market.Config {
	return market.Config{
		FeeDenomA:       m.FeeDenomA,
		FeeDenomB:       m.FeeDenomB,
		FeeCyclePeriod:  m.FeeCycleSeconds,
		MaxID:           m.MaxID,
		RoyaltyCapBps:   m.RoyaltyCapBps,
		RequireFinalize: m.RequireFinalize,
	}
}

// Sink returns the configured fee sink
func (m *MarketConfig) Sink() fee.Sink {
	if m.FeeSink == FeeSinkAddress {
		return fee.AddressSink{Address: m.FeeSinkAddress}
	}
	return fee.CommunityPoolSink{Depositor: m.FeeSinkAddress}
}

// Inspector returns a contract inspector knowing the configured contracts
func (c *ContractsConfig) Inspector() *contracts.Static {
	s := contracts.NewStatic()
	for _, t := range c.Tokens {
		s.AddToken(t.Address, contracts.TokenInfo{Name: t.Name, Symbol: t.Symbol, Decimals: t.Decimals})
	}
	for _, n := range c.Nfts {
		s.AddNft(n.Address, contracts.NftCollection{
			Info:   contracts.NftContractInfo{Name: n.Name, Symbol: n.Symbol},
			Minter: n.Minter,
		})
	}
	return s
}

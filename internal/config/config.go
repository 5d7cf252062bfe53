package config

import (
	"path/filepath"
)

// Config represents the complete marketd configuration
type Config struct {
	Server    ServerConfig    `toml:"server" mapstructure:"server"`
	GRPC      GRPCConfig      `toml:"grpc" mapstructure:"grpc"`
	Storage   StorageConfig   `toml:"storage" mapstructure:"storage"`
	History   HistoryConfig   `toml:"history" mapstructure:"history"`
	Market    MarketConfig    `toml:"market" mapstructure:"market"`
	Contracts ContractsConfig `toml:"contracts" mapstructure:"contracts"`
	Log       LogConfig       `toml:"log" mapstructure:"log"`

	configPath string `toml:"-" mapstructure:"-"`
}

// MarketConfig represents the [market] section
type MarketConfig struct {
	FeeDenomA string `toml:"fee_denom_a" mapstructure:"fee_denom_a"`
	FeeDenomB string `toml:"fee_denom_b" mapstructure:"fee_denom_b"`

	// FeeSink is "community_pool" or "address"
	FeeSink        string `toml:"fee_sink" mapstructure:"fee_sink"`
	FeeSinkAddress string `toml:"fee_sink_address" mapstructure:"fee_sink_address"`

	FeeCycleSeconds int64  `toml:"fee_cycle_seconds" mapstructure:"fee_cycle_seconds"`
	MaxID           uint64 `toml:"max_id" mapstructure:"max_id"`
	RoyaltyCapBps   uint32 `toml:"royalty_cap_bps" mapstructure:"royalty_cap_bps"`
	RequireFinalize bool   `toml:"require_finalize" mapstructure:"require_finalize"`

	// GenesisTime (unix seconds) is the start of block 1; with
	// BlockTimeSeconds it drives the height reported to operations.
	GenesisTime      int64 `toml:"genesis_time" mapstructure:"genesis_time"`
	BlockTimeSeconds int64 `toml:"block_time_seconds" mapstructure:"block_time_seconds"`
	RoyaltyCacheSize int   `toml:"royalty_cache_size" mapstructure:"royalty_cache_size"`
}

// Fee sink kinds
const (
	FeeSinkCommunityPool = "community_pool"
	FeeSinkAddress       = "address"
)

// ContractsConfig represents the [contracts] section: the token and NFT
// contracts the daemon accepts deposits from.
type ContractsConfig struct {
	Tokens []TokenContract `toml:"tokens" mapstructure:"tokens"`
	Nfts   []NftContract   `toml:"nfts" mapstructure:"nfts"`
}

// TokenContract describes a fungible token contract
type TokenContract struct {
	Address  string `toml:"address" mapstructure:"address"`
	Name     string `toml:"name" mapstructure:"name"`
	Symbol   string `toml:"symbol" mapstructure:"symbol"`
	Decimals uint8  `toml:"decimals" mapstructure:"decimals"`
}

// NftContract describes an NFT collection and its minter
type NftContract struct {
	Address string `toml:"address" mapstructure:"address"`
	Name    string `toml:"name" mapstructure:"name"`
	Symbol  string `toml:"symbol" mapstructure:"symbol"`
	Minter  string `toml:"minter" mapstructure:"minter"`
}

// LogConfig represents the [log] section
type LogConfig struct {
	File  string `toml:"file" mapstructure:"file"`
	Debug bool   `toml:"debug" mapstructure:"debug"`
}

// ConfigPaths holds the paths to configuration files
type ConfigPaths struct {
	Main string // Path to main config file (marketd.toml)
	Env  string // Optional dotenv file exporting MARKETD_ variables
}

// DefaultConfigPaths returns the default configuration file paths
func DefaultConfigPaths() ConfigPaths {
	return ConfigPaths{Main: "marketd.toml", Env: ".env"}
}

// ConfigPathsFromDir returns configuration paths for a specific directory
func ConfigPathsFromDir(configDir string) ConfigPaths {
	return ConfigPaths{
		Main: filepath.Join(configDir, "marketd.toml"),
		Env:  filepath.Join(configDir, ".env"),
	}
}

// WithMain returns the paths with the main config file replaced
func (p ConfigPaths) WithMain(main string) ConfigPaths {
	p.Main = main
	return p
}

// GetConfigPath returns the path to the main configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

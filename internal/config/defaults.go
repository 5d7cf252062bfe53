package config

import (
	"github.com/spf13/viper"

	"github.com/LeJamon/goMarketd/internal/core/asset"
	"github.com/LeJamon/goMarketd/internal/core/fee"
	"github.com/LeJamon/goMarketd/internal/core/ids"
	"github.com/LeJamon/goMarketd/internal/core/royalty"
)

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.port", 5005)
	v.SetDefault("server.admin", []string{"127.0.0.1"})
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.websocket", true)
	v.SetDefault("server.send_queue_limit", 100)
	v.SetDefault("server.ping_frequency", 30)

	// gRPC defaults
	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.ip", "127.0.0.1")
	v.SetDefault("grpc.port", 50051)
	v.SetDefault("grpc.max_recv_msg_size", 4*1024*1024)
	v.SetDefault("grpc.max_send_msg_size", 4*1024*1024)

	// Storage defaults
	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "data/market")
	v.SetDefault("storage.compression", "lz4")

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.dsn", "data/history.db")
	v.SetDefault("history.queue_size", 256)
	v.SetDefault("history.max_open_conns", 0) // 0 means driver default
	v.SetDefault("history.max_idle_conns", 0)
	v.SetDefault("history.conn_max_lifetime", "1h")
	v.SetDefault("history.timeout", "10s")

	// Market defaults
	v.SetDefault("market.fee_denom_a", "ujuno")
	v.SetDefault("market.fee_denom_b", "uatom")
	v.SetDefault("market.fee_sink", FeeSinkCommunityPool)
	v.SetDefault("market.fee_sink_address", "marketd")
	v.SetDefault("market.fee_cycle_seconds", fee.CyclePeriod)
	v.SetDefault("market.max_id", uint64(ids.DefaultMaxID))
	v.SetDefault("market.royalty_cap_bps", asset.DefaultRoyaltyCapBps)
	v.SetDefault("market.require_finalize", false)
	v.SetDefault("market.genesis_time", 1704067200)
	v.SetDefault("market.block_time_seconds", 6)
	v.SetDefault("market.royalty_cache_size", royalty.DefaultCacheSize)

	// Contracts are deployment specific
	v.SetDefault("contracts.tokens", []map[string]interface{}{})
	v.SetDefault("contracts.nfts", []map[string]interface{}{})

	// Log defaults
	v.SetDefault("log.file", "")
	v.SetDefault("log.debug", false)
}

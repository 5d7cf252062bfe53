package config

import (
	"fmt"
	"time"

	"github.com/LeJamon/goMarketd/internal/storage/codec"
	"github.com/LeJamon/goMarketd/internal/storage/database"
	"github.com/LeJamon/goMarketd/internal/storage/history"
)

// StorageConfig represents the [storage] section
// Configures the key-value store holding market state
type StorageConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// HistoryConfig represents the [history] section
// Configures the relational sales mirror
type HistoryConfig struct {
	Enabled         bool          `toml:"enabled" mapstructure:"enabled"`
	Driver          string        `toml:"driver" mapstructure:"driver"`
	DSN             string        `toml:"dsn" mapstructure:"dsn"`
	QueueSize       int           `toml:"queue_size" mapstructure:"queue_size"`
	MaxOpenConns    int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	Timeout         time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// Validate performs validation on the storage configuration
func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case database.BackendPebble, database.BackendLevelDB:
		if s.Path == "" {
			return fmt.Errorf("path is required for the %s backend", s.Backend)
		}
	case database.BackendMemory:
	default:
		return fmt.Errorf("invalid backend: %s (valid options: pebble, leveldb, memory)", s.Backend)
	}
	switch s.Compression {
	case codec.CompressionNone, codec.CompressionLZ4:
	default:
		return fmt.Errorf("invalid compression: %s (valid options: none, lz4)", s.Compression)
	}
	return nil
}

// Validate performs validation on the history configuration
func (h *HistoryConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	if h.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", h.QueueSize)
	}
	return h.StoreConfig().Validate()
}

// StoreConfig converts the section into a history store configuration
func (h *HistoryConfig) StoreConfig() *history.Config {
	c := history.NewConfig(h.Driver, h.DSN)
	if h.MaxOpenConns > 0 {
		c.MaxOpenConns = h.MaxOpenConns
	}
	if h.MaxIdleConns > 0 {
		c.MaxIdleConns = h.MaxIdleConns
	}
	if h.ConnMaxLifetime > 0 {
		c.ConnMaxLifetime = h.ConnMaxLifetime
	}
	c.DefaultTimeout = h.Timeout
	return c
}

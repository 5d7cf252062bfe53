package history

import (
	"errors"
	"time"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrInvalidDriver  = errors.New("invalid history driver")
	ErrMissingDSN     = errors.New("history dsn is required")
	ErrInvalidTimeout = errors.New("timeout must be positive")
	ErrDatabaseClosed = errors.New("history database is closed")
)

// Config contains the sales history database settings
type Config struct {
	Driver string `json:"driver" yaml:"driver"`
	// DSN is a file path for sqlite and a connection string for postgres.
	DSN string `json:"dsn" yaml:"dsn"`

	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	DefaultTimeout  time.Duration `json:"default_timeout" yaml:"default_timeout"`
}

// NewConfig creates a Config with defaults for driver.
func NewConfig(driver, dsn string) *Config {
	c := &Config{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  10 * time.Second,
	}
	if driver == DriverSQLite {
		// sqlite allows a single writer
		c.MaxOpenConns = 1
		c.MaxIdleConns = 1
	}
	return c
}

// Validate checks the configuration
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return ErrInvalidDriver
	}
	if c.DSN == "" {
		return ErrMissingDSN
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

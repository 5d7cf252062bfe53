package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ServerConfig represents the [server] section
type ServerConfig struct {
	IP   string `toml:"ip" mapstructure:"ip"`
	Port int    `toml:"port" mapstructure:"port"`

	// Admin lists the IPs and CIDR ranges allowed to call mutating methods.
	Admin []string `toml:"admin" mapstructure:"admin"`

	ReadTimeout  time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`

	// RateLimit is requests per second per client, 0 disables limiting.
	RateLimit float64 `toml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `toml:"rate_burst" mapstructure:"rate_burst"`

	// WebSocket event stream
	WebSocket         bool `toml:"websocket" mapstructure:"websocket"`
	SendQueueLimit    int  `toml:"send_queue_limit" mapstructure:"send_queue_limit"`
	PingFrequencySecs int  `toml:"ping_frequency" mapstructure:"ping_frequency"`
}

// Address returns the listen address
func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// Validate performs validation on the server configuration
func (s *ServerConfig) Validate() error {
	if s.IP == "" {
		return fmt.Errorf("ip is required")
	}
	if net.ParseIP(s.IP) == nil {
		return fmt.Errorf("invalid ip address: %s", s.IP)
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	for _, admin := range s.Admin {
		if net.ParseIP(admin) == nil {
			if _, _, err := net.ParseCIDR(admin); err != nil {
				return fmt.Errorf("invalid admin address: %s", admin)
			}
		}
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative, got %v", s.RateLimit)
	}
	if s.RateLimit > 0 && s.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be at least 1 when rate_limit is set")
	}
	if s.SendQueueLimit < 1 {
		return fmt.Errorf("send_queue_limit must be at least 1, got %d", s.SendQueueLimit)
	}
	if s.PingFrequencySecs < 0 {
		return fmt.Errorf("ping_frequency must be non-negative, got %d", s.PingFrequencySecs)
	}
	return nil
}

package config

import (
	"net"
	"strconv"

	"github.com/LeJamon/goMarketd/internal/grpc"
)

// GRPCConfig represents the [grpc] section. Admin addresses are shared
// with [server].
type GRPCConfig struct {
	Enabled        bool   `toml:"enabled" mapstructure:"enabled"`
	IP             string `toml:"ip" mapstructure:"ip"`
	Port           int    `toml:"port" mapstructure:"port"`
	MaxRecvMsgSize int    `toml:"max_recv_msg_size" mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize int    `toml:"max_send_msg_size" mapstructure:"max_send_msg_size"`
}

// Address returns the listen address
func (g *GRPCConfig) Address() string {
	return net.JoinHostPort(g.IP, strconv.Itoa(g.Port))
}

// ServerConfig converts the section into gRPC server settings
func (g *GRPCConfig) ServerConfig(admin []string) *grpc.ServerConfig {
	return &grpc.ServerConfig{
		Address:        g.Address(),
		Admin:          admin,
		MaxRecvMsgSize: g.MaxRecvMsgSize,
		MaxSendMsgSize: g.MaxSendMsgSize,
	}
}

// Validate performs validation on the grpc configuration. A disabled
// section is not checked.
func (g *GRPCConfig) Validate() error {
	if !g.Enabled {
		return nil
	}
	return g.ServerConfig(nil).Validate()
}

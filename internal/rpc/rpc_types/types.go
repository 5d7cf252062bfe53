package rpc_types

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/LeJamon/goMarketd/internal/core/clock"
	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/storage/history"
)

// API version constants
const (
	ApiVersion1       = 1
	DefaultApiVersion = ApiVersion1
)

// Role-based access control
type Role int

const (
	RoleGuest Role = iota
	RoleAdmin
)

// SalesReader serves the sales history.
type SalesReader interface {
	Sales(ctx context.Context, filter history.Filter) ([]*history.Sale, error)
}

// ServiceContainer holds what handlers need. History may be nil when the
// sales mirror is disabled.
type ServiceContainer struct {
	Market  *market.Engine
	Clock   clock.Clock
	History SalesReader
}

// RpcContext contains request-specific information
type RpcContext struct {
	Context    context.Context
	Role       Role
	ApiVersion int
	IsAdmin    bool
	ClientIP   string
	RequestID  string
	Services   *ServiceContainer
}

// MethodHandler is implemented by every RPC method
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
	SupportedApiVersions() []int
}

// MethodRegistry maps method names to handlers
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names in sorted order
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// Request is a JSON-RPC request: {"method": "name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// Event is one committed market operation as streamed to subscribers
type Event struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Result *market.Result `json:"result"`
}

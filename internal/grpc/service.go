package grpc

import (
	"context"
	"encoding/json"
	"net"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/LeJamon/goMarketd/internal/rpc"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

// Market service names.
const (
	MarketServiceName = "marketd.v1.Market"
	CallMethod        = "/marketd.v1.Market/Call"
)

// Executor runs a named RPC method. *rpc.Server implements it.
type Executor interface {
	Execute(method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError)
}

// MarketServer is the Market service. A call carries {"method", "params"}
// and returns the method's result object.
type MarketServer interface {
	Call(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var marketServiceDesc = grpc.ServiceDesc{
	ServiceName: MarketServiceName,
	HandlerType: (*MarketServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Call", Handler: callHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketd/v1/market.proto",
}

func registerMarketService(s *grpc.Server, srv MarketServer) {
	s.RegisterService(&marketServiceDesc, srv)
}

func callHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MarketServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CallMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MarketServer).Call(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type marketService struct {
	executor Executor
	admin    *rpc.AdminList
}

func (m *marketService) Call(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	method := req.GetFields()["method"].GetStringValue()
	if method == "" {
		return nil, status.Error(codes.InvalidArgument, "missing method")
	}

	var params json.RawMessage
	if p, ok := req.GetFields()["params"]; ok {
		raw, err := protojson.Marshal(p)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid params: %v", err)
		}
		params = raw
	}

	ip := peerIP(ctx)
	rpcCtx := &rpc_types.RpcContext{
		Context:    ctx,
		Role:       rpc_types.RoleGuest,
		ApiVersion: rpc_types.DefaultApiVersion,
		ClientIP:   ip,
		RequestID:  requestID(ctx),
	}
	if m.admin.Contains(ip) {
		rpcCtx.Role = rpc_types.RoleAdmin
		rpcCtx.IsAdmin = true
	}

	result, rpcErr := m.executor.Execute(method, params, rpcCtx)
	if rpcErr != nil {
		return nil, statusFromRpcError(rpcErr)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return out, nil
}

// statusFromRpcError maps an RPC error onto a gRPC status. The RPC error
// token travels as the status message prefix.
func statusFromRpcError(e *rpc_types.RpcError) error {
	code := codes.FailedPrecondition
	switch e.Code {
	case rpc_types.RpcMETHOD_NOT_FOUND:
		code = codes.Unimplemented
	case rpc_types.RpcCOMMAND_UNTRUSTED, rpc_types.RpcUNAUTHORIZED:
		code = codes.PermissionDenied
	case rpc_types.RpcINVALID_PARAMS, rpc_types.RpcJSON_RPC, rpc_types.RpcPARSE_ERROR,
		rpc_types.RpcINVALID_TTL, rpc_types.RpcROYALTY_INVALID, rpc_types.RpcINVALID_BALANCE:
		code = codes.InvalidArgument
	case rpc_types.RpcNOT_FOUND:
		code = codes.NotFound
	case rpc_types.RpcID_ALREADY_EXISTS:
		code = codes.AlreadyExists
	case rpc_types.RpcSLOW_DOWN, rpc_types.RpcTOO_BUSY:
		code = codes.ResourceExhausted
	case rpc_types.RpcNOT_ENABLED:
		code = codes.Unavailable
	case rpc_types.RpcINTERNAL, rpc_types.RpcUNKNOWN:
		code = codes.Internal
	}
	return status.Errorf(code, "%s: %s", e.ErrorString, e.Error())
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}

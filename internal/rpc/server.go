package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// Options configure a Server
type Options struct {
	Timeout   time.Duration
	Admin     []string
	RateLimit float64
	RateBurst int
	Logger    *zap.Logger
}

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry *rpc_types.MethodRegistry
	services *rpc_types.ServiceContainer
	timeout  time.Duration
	admin    *AdminList
	limiter  *RateLimiter
	logger   *zap.Logger
}

// NewServer creates a new RPC server over services
func NewServer(services *rpc_types.ServiceContainer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	server := &Server{
		registry: rpc_types.NewMethodRegistry(),
		services: services,
		timeout:  opts.Timeout,
		admin:    NewAdminList(opts.Admin),
		limiter:  NewRateLimiter(opts.RateLimit, opts.RateBurst),
		logger:   logger.With(zap.String("component", "rpc")),
	}

	server.registerAllMethods()

	return server
}

// Methods returns the registered method names
func (s *Server) Methods() []string {
	return s.registry.List()
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqID := requestID(r)
	w.Header().Set("X-Request-ID", reqID)

	clientIP := getClientIP(r)
	if !s.limiter.Allow(clientIP) {
		s.logger.Warn("rate limit exceeded", zap.String("client", clientIP))
		s.writeResponse(w, nil, nil, rpc_types.RpcErrorSlowDown("Too many requests, please slow down"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, nil, rpc_types.RpcErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request rpc_types.Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeError(w, nil, rpc_types.NewRpcError(rpc_types.RpcPARSE_ERROR, "jsonInvalid", "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeError(w, nil, rpc_types.NewRpcError(rpc_types.RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing method field"))
		return
	}

	// params is an array holding one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	isAdmin := s.admin.Contains(clientIP)
	rpcCtx := &rpc_types.RpcContext{
		Context:    ctx,
		Role:       rpc_types.RoleGuest,
		ApiVersion: rpc_types.DefaultApiVersion,
		IsAdmin:    isAdmin,
		ClientIP:   clientIP,
		RequestID:  reqID,
		Services:   s.services,
	}
	if isAdmin {
		rpcCtx.Role = rpc_types.RoleAdmin
	}
	if params != nil {
		var versioned struct {
			ApiVersion *int `json:"api_version"`
		}
		if err := json.Unmarshal(params, &versioned); err == nil && versioned.ApiVersion != nil {
			rpcCtx.ApiVersion = *versioned.ApiVersion
		}
	}

	result, rpcErr := s.Execute(request.Method, params, rpcCtx)

	var requestObj map[string]interface{}
	if params != nil {
		if err := json.Unmarshal(params, &requestObj); err != nil {
			requestObj = nil
		}
	}
	if requestObj == nil {
		requestObj = map[string]interface{}{}
	}
	requestObj["command"] = request.Method

	s.writeResponse(w, requestObj, result, rpcErr)
}

// Execute runs a method with the given parameters
func (s *Server) Execute(method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}

	if ctx.Role < handler.RequiredRole() {
		return nil, rpc_types.RpcErrorUntrusted(method)
	}

	supportedVersions := handler.SupportedApiVersions()
	if len(supportedVersions) > 0 {
		supported := false
		for _, version := range supportedVersions {
			if ctx.ApiVersion == version {
				supported = true
				break
			}
		}
		if !supported {
			return nil, rpc_types.RpcErrorInvalidApiVersion(strconv.Itoa(ctx.ApiVersion))
		}
	}

	if ctx.Services == nil {
		ctx.Services = s.services
	}
	start := time.Now()
	result, rpcErr := handler.Handle(ctx, params)
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("request_id", ctx.RequestID),
		zap.Duration("elapsed", time.Since(start)),
	}
	if rpcErr != nil {
		s.logger.Debug("rpc call failed", append(fields, zap.String("error", rpcErr.ErrorString))...)
	} else {
		s.logger.Debug("rpc call", fields...)
	}
	return result, rpcErr
}

// writeResponse writes a response. Errors carry status "error" with the
// error fields inside result.
func (s *Server) writeResponse(w http.ResponseWriter, request interface{}, result interface{}, rpcErr *rpc_types.RpcError) {
	response := make(map[string]interface{})

	if rpcErr != nil {
		resultObj := map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			resultObj["request"] = request
		}
		response["result"] = resultObj
	} else if resultMap, ok := result.(map[string]interface{}); ok {
		resultMap["status"] = "success"
		response["result"] = resultMap
	} else {
		response["result"] = map[string]interface{}{
			"status": "success",
			"data":   result,
		}
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to marshal response", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(responseData)
}

// writeError writes an error response for a request that could not be parsed
func (s *Server) writeError(w http.ResponseWriter, request interface{}, rpcErr *rpc_types.RpcError) {
	s.writeResponse(w, request, nil, rpcErr)
}

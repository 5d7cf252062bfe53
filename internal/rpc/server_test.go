package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LeJamon/goMarketd/internal/core/clock"
	"github.com/LeJamon/goMarketd/internal/core/contracts"
	"github.com/LeJamon/goMarketd/internal/core/fee"
	"github.com/LeJamon/goMarketd/internal/core/market"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
	"github.com/LeJamon/goMarketd/internal/storage/codec"
	"github.com/LeJamon/goMarketd/internal/storage/database/pebble"
	"github.com/LeJamon/goMarketd/internal/storage/history"
)

const t0 int64 = 1_700_000_000

type fakeSales struct {
	filter history.Filter
	sales  []*history.Sale
}

func (f *fakeSales) Sales(_ context.Context, filter history.Filter) ([]*history.Sale, error) {
	f.filter = filter
	return f.sales, nil
}

type testEnv struct {
	engine *market.Engine
	server *Server
	http   *httptest.Server
	sales  *fakeSales
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	manager := pebble.NewMemManager()
	t.Cleanup(func() { _ = manager.Close() })
	db, err := manager.OpenDB("market")
	require.NoError(t, err)

	inspector := contracts.NewStatic()
	inspector.AddToken("token_a", contracts.TokenInfo{Name: "A", Symbol: "A"})
	inspector.AddNft("nft_x", contracts.NftCollection{Minter: "minter_x"})

	cfg := market.DefaultConfig()
	cfg.FeeDenomA = "cur_a"
	cfg.FeeDenomB = "cur_b"
	engine, err := market.NewEngine(cfg, market.Deps{
		DB:        db,
		Codec:     codec.MustNew("none"),
		Inspector: inspector,
		Sink:      fee.AddressSink{Address: "collector"},
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	sales := &fakeSales{}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	server := NewServer(&rpc_types.ServiceContainer{
		Market:  engine,
		Clock:   clock.Fixed{Now: t0, Height: 1},
		History: sales,
	}, opts)
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return &testEnv{engine: engine, server: server, http: ts, sales: sales}
}

func adminOpts() Options {
	return Options{Admin: []string{"127.0.0.0/8", "::1"}}
}

// call posts a request and returns the result object
func (e *testEnv) call(t *testing.T, method string, params interface{}) map[string]interface{} {
	t.Helper()
	req := map[string]interface{}{"method": method}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(e.http.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Result
}

func funds(denom string, amount string) map[string]interface{} {
	return map[string]interface{}{
		"coins":  []interface{}{map[string]interface{}{"denom": denom, "amount": amount}},
		"tokens": []interface{}{},
		"nfts":   []interface{}{},
	}
}

func TestPing(t *testing.T) {
	e := newTestEnv(t, Options{})
	res := e.call(t, "ping", nil)
	assert.Equal(t, "success", res["status"])
}

func TestUnknownMethod(t *testing.T) {
	e := newTestEnv(t, Options{})
	res := e.call(t, "account_info", map[string]interface{}{})
	assert.Equal(t, "error", res["status"])
	assert.Equal(t, "unknownCmd", res["error"])
	assert.Equal(t, float64(rpc_types.RpcMETHOD_NOT_FOUND), res["error_code"])
}

func TestMalformedRequests(t *testing.T) {
	e := newTestEnv(t, Options{})
	resp, err := http.Post(e.http.URL, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "jsonInvalid", out.Result["error"])

	res := e.call(t, "", nil)
	assert.Equal(t, "missingCommand", res["error"])

	get, err := http.Get(e.http.URL)
	require.NoError(t, err)
	get.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)
}

func TestMutationsRequireAdmin(t *testing.T) {
	e := newTestEnv(t, Options{})
	res := e.call(t, "create_bucket", map[string]interface{}{"sender": "buyer", "funds": funds("cur_a", "10")})
	assert.Equal(t, "commandUntrusted", res["error"])

	// queries stay public
	res = e.call(t, "fee_denom", nil)
	assert.Equal(t, "success", res["status"])
	assert.Equal(t, "cur_a", res["active"])
}

func TestListingLifecycleOverRPC(t *testing.T) {
	e := newTestEnv(t, adminOpts())

	res := e.call(t, "create_listing", map[string]interface{}{
		"sender": "seller",
		"funds":  funds("cur_a", "100"),
		"ask":    funds("cur_b", "50"),
	})
	require.Equal(t, "success", res["status"], res)
	assert.Equal(t, float64(1), res["listing_id"])
	assert.Equal(t, "create_listing", res["action"])

	res = e.call(t, "finalize_listing", map[string]interface{}{"sender": "seller", "id": 1, "seconds": 600})
	require.Equal(t, "success", res["status"], res)

	res = e.call(t, "create_bucket", map[string]interface{}{"sender": "buyer", "funds": funds("cur_b", "50")})
	require.Equal(t, "success", res["status"], res)
	assert.Equal(t, float64(1), res["bucket_id"])

	res = e.call(t, "buy_listing", map[string]interface{}{"sender": "buyer", "listing_id": 1, "bucket_id": 1})
	require.Equal(t, "success", res["status"], res)

	res = e.call(t, "listing", map[string]interface{}{"id": 1})
	require.Equal(t, "success", res["status"])
	listing := res["listing"].(map[string]interface{})
	assert.Equal(t, "closed", listing["status"])
	assert.Equal(t, "buyer", listing["claimant"])

	res = e.call(t, "withdraw_purchased", map[string]interface{}{"sender": "buyer", "id": 1})
	require.Equal(t, "success", res["status"], res)
	instructions := res["instructions"].([]interface{})
	assert.NotEmpty(t, instructions)

	res = e.call(t, "listings_by_owner", map[string]interface{}{"owner": "seller"})
	require.Equal(t, "success", res["status"])
	assert.Empty(t, res["listings"])
}

func TestMarketErrorsAreMapped(t *testing.T) {
	e := newTestEnv(t, adminOpts())

	res := e.call(t, "listing", map[string]interface{}{"id": 42})
	assert.Equal(t, "notFound", res["error"])
	assert.Equal(t, float64(rpc_types.RpcNOT_FOUND), res["error_code"])
	assert.Equal(t, map[string]interface{}{"command": "listing", "id": float64(42)}, res["request"])

	res = e.call(t, "create_listing", map[string]interface{}{"sender": "seller", "funds": funds("cur_a", "0")})
	assert.Equal(t, "invalidBalance", res["error"])

	res = e.call(t, "create_listing", map[string]interface{}{"sender": "seller", "funds": funds("cur_a", "5")})
	require.Equal(t, "success", res["status"])
	res = e.call(t, "change_ask", map[string]interface{}{"sender": "mallory", "id": 1, "ask": funds("cur_b", "1")})
	assert.Equal(t, "unauthorized", res["error"])

	res = e.call(t, "finalize_listing", map[string]interface{}{"sender": "seller", "id": 1, "seconds": 1})
	assert.Equal(t, "invalidTtl", res["error"])

	res = e.call(t, "add_to_listing", map[string]interface{}{"sender": "seller"})
	assert.Equal(t, "invalidParams", res["error"])
}

func TestReceiveTokensOverRPC(t *testing.T) {
	e := newTestEnv(t, adminOpts())
	res := e.call(t, "receive_tokens", map[string]interface{}{
		"contract": "token_a",
		"sender":   "buyer",
		"amount":   "25",
		"msg":      map[string]interface{}{"create_bucket": map[string]interface{}{}},
	})
	require.Equal(t, "success", res["status"], res)

	res = e.call(t, "receive_tokens", map[string]interface{}{
		"contract": "token_a",
		"sender":   "buyer",
		"amount":   "-1",
	})
	assert.Equal(t, "invalidParams", res["error"])
}

func TestRoyaltyOverRPC(t *testing.T) {
	e := newTestEnv(t, adminOpts())
	res := e.call(t, "register_royalty", map[string]interface{}{
		"sender": "minter_x", "nft_collection": "nft_x", "payout_address": "artist", "bps": 100,
	})
	require.Equal(t, "success", res["status"], res)

	res = e.call(t, "royalty", map[string]interface{}{"nft_collection": "nft_x"})
	assert.Equal(t, true, res["registered"])
	assert.Equal(t, float64(100), res["bps"])

	res = e.call(t, "register_royalty", map[string]interface{}{
		"sender": "someone", "nft_collection": "nft_x", "payout_address": "artist", "bps": 100,
	})
	assert.Equal(t, "unauthorized", res["error"])
}

func TestSalesQuery(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.sales.sales = []*history.Sale{{ListingID: 3, Seller: "alice", Buyer: "bob"}}
	res := e.call(t, "sales", map[string]interface{}{"seller": "alice", "limit": 5})
	require.Equal(t, "success", res["status"])
	assert.Len(t, res["sales"], 1)
	assert.Equal(t, history.Filter{Seller: "alice", Limit: 5}, e.sales.filter)

	res = e.call(t, "sales", map[string]interface{}{"limit": 1000})
	assert.Equal(t, "invalidParams", res["error"])
}

func TestRateLimit(t *testing.T) {
	e := newTestEnv(t, Options{RateLimit: 0.001, RateBurst: 1})
	assert.Equal(t, "success", e.call(t, "ping", nil)["status"])
	assert.Equal(t, "slowDown", e.call(t, "ping", nil)["error"])
}

func TestAdminList(t *testing.T) {
	a := NewAdminList([]string{"10.0.0.0/8", "192.168.1.5", "bogus"})
	assert.True(t, a.Contains("10.1.2.3"))
	assert.True(t, a.Contains("192.168.1.5"))
	assert.False(t, a.Contains("192.168.1.6"))
	assert.False(t, a.Contains("not-an-ip"))
}

func TestMethodsRegistered(t *testing.T) {
	e := newTestEnv(t, Options{})
	methods := e.server.Methods()
	for _, m := range []string{
		"create_listing", "add_to_listing", "change_ask", "finalize_listing", "set_whitelist",
		"remove_listing", "withdraw_purchased", "create_bucket", "add_to_bucket", "remove_bucket",
		"buy_listing", "receive_tokens", "receive_nft", "register_royalty", "update_royalty",
		"remove_royalty", "listings_by_owner", "buckets_by_owner", "listings_for_market",
		"listing", "bucket", "fee_denom", "royalty", "sales", "ping",
	} {
		assert.Contains(t, methods, m)
	}
}

type captureBroadcaster struct{ messages [][]byte }

func (c *captureBroadcaster) Broadcast(data []byte) { c.messages = append(c.messages, data) }

func TestPublisherEncodesEvents(t *testing.T) {
	out := &captureBroadcaster{}
	p := NewPublisher(out, zap.NewNop())
	p.Observe(context.Background(), &market.Result{Action: "create_bucket", BucketID: 4})
	p.Observe(context.Background(), nil)
	require.Len(t, out.messages, 1)

	var event rpc_types.Event
	require.NoError(t, json.Unmarshal(out.messages[0], &event))
	assert.Equal(t, "market_event", event.Type)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, uint64(4), event.Result.BucketID)
}

func TestStreamDeliversCommittedOperations(t *testing.T) {
	e := newTestEnv(t, adminOpts())
	stream := NewStreamServer(8, time.Second, zap.NewNop())
	e.engine.Subscribe(NewPublisher(stream, zap.NewNop()))

	ts := httptest.NewServer(NewMux(e.server, stream))
	t.Cleanup(ts.Close)
	t.Cleanup(stream.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return stream.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	res := e.call(t, "create_bucket", map[string]interface{}{"sender": "buyer", "funds": funds("cur_a", "10")})
	require.Equal(t, "success", res["status"], res)
	// rejected operations are not streamed
	e.call(t, "create_bucket", map[string]interface{}{"sender": "buyer", "funds": funds("cur_a", "0")})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event rpc_types.Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "create_bucket", event.Result.Action)
	assert.Equal(t, uint64(1), event.Result.BucketID)
}

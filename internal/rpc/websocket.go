package rpc

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4 * 1024
)

// StreamServer upgrades connections to WebSocket and streams committed
// market events to them. Clients only receive; anything they send other
// than control frames is discarded.
type StreamServer struct {
	upgrader       websocket.Upgrader
	sendQueueLimit int
	pingPeriod     time.Duration
	logger         *zap.Logger

	mu          sync.RWMutex
	connections map[string]*streamConnection
}

// streamConnection represents a single WebSocket connection
type streamConnection struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
}

// NewStreamServer creates a stream server. A client whose send queue
// reaches sendQueueLimit is disconnected.
func NewStreamServer(sendQueueLimit int, pingPeriod time.Duration, logger *zap.Logger) *StreamServer {
	if sendQueueLimit < 1 {
		sendQueueLimit = 100
	}
	if pingPeriod <= 0 {
		pingPeriod = 30 * time.Second
	}
	if logger == nil {
		logger = zap.L()
	}
	return &StreamServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sendQueueLimit: sendQueueLimit,
		pingPeriod:     pingPeriod,
		logger:         logger.With(zap.String("component", "stream")),
		connections:    make(map[string]*streamConnection),
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (ws *StreamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	// the connection outlives the upgrade request
	ctx, cancel := context.WithCancel(context.Background())
	c := &streamConnection{
		ID:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, ws.sendQueueLimit),
		ctx:    ctx,
		cancel: cancel,
	}

	ws.mu.Lock()
	ws.connections[c.ID] = c
	ws.mu.Unlock()
	ws.logger.Debug("stream client connected", zap.String("conn", c.ID), zap.String("client", getClientIP(r)))

	go ws.readLoop(c)
	go ws.writeLoop(c)
}

// readLoop consumes control frames until the client goes away
func (ws *StreamServer) readLoop(c *streamConnection) {
	defer ws.closeConnection(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(2 * ws.pingPeriod))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * ws.pingPeriod))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.logger.Debug("websocket read failed", zap.String("conn", c.ID), zap.Error(err))
			}
			return
		}
	}
}

// writeLoop delivers queued events and keeps the connection alive
func (ws *StreamServer) writeLoop(c *streamConnection) {
	ticker := time.NewTicker(ws.pingPeriod)
	defer func() {
		ticker.Stop()
		ws.closeConnection(c)
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.logger.Debug("websocket send failed", zap.String("conn", c.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unregisters and closes a connection. It is safe to call
// more than once.
func (ws *StreamServer) closeConnection(c *streamConnection) {
	ws.mu.Lock()
	_, registered := ws.connections[c.ID]
	delete(ws.connections, c.ID)
	ws.mu.Unlock()

	c.cancel()
	if registered {
		c.conn.Close()
		ws.logger.Debug("stream client disconnected", zap.String("conn", c.ID))
	}
}

// Broadcast queues data for every connection. Slow clients whose queue is
// full are disconnected rather than allowed to stall the others.
func (ws *StreamServer) Broadcast(data []byte) {
	ws.mu.RLock()
	var slow []*streamConnection
	for _, c := range ws.connections {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	ws.mu.RUnlock()

	for _, c := range slow {
		ws.logger.Warn("stream client too slow, disconnecting", zap.String("conn", c.ID))
		ws.closeConnection(c)
	}
}

// ConnectionCount returns the number of connected clients
func (ws *StreamServer) ConnectionCount() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.connections)
}

// Close disconnects every client
func (ws *StreamServer) Close() {
	ws.mu.RLock()
	conns := make([]*streamConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		conns = append(conns, c)
	}
	ws.mu.RUnlock()
	for _, c := range conns {
		c.cancel()
	}
}

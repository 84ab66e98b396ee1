package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/rpsls/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Connection represents a WebSocket connection to a player
type Connection struct {
	conn      *websocket.Conn
	handler   *dispatcher
	send      chan *protocol.Message
	logger    *log.Logger
	clock     quartz.Clock
	idle      *quartz.Timer
	timeout   time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// newConnection creates a new connection wrapper
func newConnection(conn *websocket.Conn, handler *dispatcher, clock quartz.Clock, idleTimeout time.Duration, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:    conn,
		handler: handler,
		send:    make(chan *protocol.Message, 16),
		logger:  logger.WithPrefix("conn"),
		clock:   clock,
		timeout: idleTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}
	return c
}

// Start begins handling the connection
func (c *Connection) Start() {
	if c.timeout > 0 {
		c.idle = c.clock.AfterFunc(c.timeout, func() {
			c.logger.Info("Closing idle connection", "timeout", c.timeout)
			_ = c.Close()
		}, "idle")
	}
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.idle != nil {
			c.idle.Stop()
		}
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// readPump handles incoming messages and is the only caller of the dispatcher
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}
		if c.idle != nil {
			c.idle.Reset(c.timeout, "idle")
		}

		c.logger.Debug("Received message", "type", msg.Type)
		reply := c.handler.handle(&msg)

		select {
		case c.send <- reply:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the player
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

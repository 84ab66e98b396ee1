// Package client plays against a remote rpsls server over its websocket.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/protocol"
	"github.com/lox/rpsls/internal/session"
	"github.com/lox/rpsls/rules"
)

// DefaultRequestTimeout bounds each request/reply exchange.
const DefaultRequestTimeout = 10 * time.Second

// Client is a request/reply websocket client. Every call sends one message
// and waits for its reply, so calls are serialised.
type Client struct {
	conn      *websocket.Conn
	logger    *log.Logger
	timeout   time.Duration
	mu        sync.Mutex
	closeOnce sync.Once
}

// Dial connects to serverURL. http and https URLs are converted to ws and
// wss, and an empty path becomes /ws.
func Dial(ctx context.Context, serverURL string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("invalid server URL: unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	logger = logger.WithPrefix("client")
	logger.Info("Connecting to server", "url", u.String())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &Client{conn: conn, logger: logger, timeout: timeout}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

// Start sends hello and returns the server's welcome.
func (c *Client) Start(player, opponent string) (*protocol.WelcomeData, error) {
	var out protocol.WelcomeData
	err := c.call(protocol.TypeHello, protocol.HelloData{PlayerName: player, Opponent: opponent}, protocol.TypeWelcome, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Play sends a move and returns the resolved round.
func (c *Client) Play(choice string) (*protocol.RoundData, error) {
	var out protocol.RoundData
	if err := c.call(protocol.TypeMove, protocol.MoveData{Choice: choice}, protocol.TypeRound, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Restart starts the next match on the server.
func (c *Client) Restart(keepOpponent bool, opponent string) (*protocol.WelcomeData, error) {
	var out protocol.WelcomeData
	err := c.call(protocol.TypeRestart, protocol.RestartData{KeepOpponent: keepOpponent, Opponent: opponent}, protocol.TypeWelcome, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profiles lists the opponents the server offers.
func (c *Client) Profiles() ([]protocol.ProfileInfo, error) {
	var out protocol.ProfilesData
	if err := c.call(protocol.TypeListProfiles, nil, protocol.TypeProfiles, &out); err != nil {
		return nil, err
	}
	return out.Profiles, nil
}

func (c *Client) call(typ protocol.MessageType, data any, want protocol.MessageType, out any) error {
	msg, err := protocol.NewMessage(typ, data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(c.timeout)
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", typ, err)
	}

	_ = c.conn.SetReadDeadline(deadline)
	var reply protocol.Message
	if err := c.conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("failed to read reply to %s: %w", typ, err)
	}
	c.logger.Debug("Received message", "type", reply.Type)

	if err := reply.Expect(want, out); err != nil {
		var e *protocol.ErrorData
		if errors.As(err, &e) {
			return remoteError(e)
		}
		return err
	}
	return nil
}

// remoteError maps a server error reply back onto the domain error it came
// from, so callers can treat local and remote play alike.
func remoteError(e *protocol.ErrorData) error {
	var sentinel error
	switch e.Code {
	case protocol.CodeInvalidMove:
		sentinel = rules.ErrInvalidMoveKind
	case protocol.CodeUnknownProfile:
		sentinel = bot.ErrUnknownProfile
	case protocol.CodeDuplicateName:
		sentinel = game.ErrDuplicateName
	case protocol.CodeMatchComplete:
		sentinel = game.ErrMatchComplete
	case protocol.CodeNoMatch:
		sentinel = session.ErrNotStarted
	default:
		return e
	}
	return fmt.Errorf("%w (server: %s)", sentinel, e.Message)
}

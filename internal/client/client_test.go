package client

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/protocol"
	"github.com/lox/rpsls/internal/server"
	"github.com/lox/rpsls/internal/session"
	"github.com/lox/rpsls/rules"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := server.NewServer(bot.DefaultRegistry(), testLogger(), server.WithSeed(3), server.WithWinningScore(2))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	c, err := Dial(context.Background(), ts.URL, 0, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientPlaysMatch(t *testing.T) {
	c := dial(t, startServer(t))

	profiles, err := c.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 4)
	assert.Equal(t, "Hal", profiles[1].Name)

	_, err = c.Play("r")
	require.ErrorIs(t, err, session.ErrNotStarted)

	w, err := c.Start("Ada", "2")
	require.NoError(t, err)
	assert.Equal(t, "Hal", w.Opponent.Name)
	assert.Equal(t, 2, w.WinningScore)

	r, err := c.Play("sp")
	require.NoError(t, err)
	assert.Equal(t, protocol.ResultWin, r.Result)
	assert.Equal(t, "Spock vaporizes rock", r.Description)

	_, err = c.Play("x")
	require.ErrorIs(t, err, rules.ErrInvalidMoveKind)

	r, err = c.Play("p")
	require.NoError(t, err)
	assert.True(t, r.Complete)

	_, err = c.Play("p")
	require.ErrorIs(t, err, game.ErrMatchComplete)

	_, err = c.Restart(false, "Marvin")
	require.ErrorIs(t, err, bot.ErrUnknownProfile)

	w, err = c.Restart(false, "sonny")
	require.NoError(t, err)
	assert.Equal(t, "Sonny", w.Opponent.Name)

	r, err = c.Play("r")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Number)
}

func TestClientDuplicateName(t *testing.T) {
	c := dial(t, startServer(t))
	_, err := c.Start("R2D2", "R2D2")
	assert.ErrorIs(t, err, game.ErrDuplicateName)
}

func TestDialRejectsBadURLs(t *testing.T) {
	_, err := Dial(context.Background(), "ftp://example.com", 0, testLogger())
	assert.Error(t, err)

	_, err = Dial(context.Background(), "://nope", 0, testLogger())
	assert.Error(t, err)
}

func TestRemoteErrorPassesThroughUnknownCodes(t *testing.T) {
	e := &protocol.ErrorData{Code: protocol.CodeInternal, Message: "boom"}
	err := remoteError(e)
	assert.Same(t, e, err)
}

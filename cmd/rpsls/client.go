package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/rpsls/internal/client"
)

// ClientCmd plays against a remote server over websocket
type ClientCmd struct {
	URL     string        `short:"u" help:"Server URL, http(s) or ws(s) (overrides config)"`
	Player  string        `short:"p" help:"Your name (overrides config)"`
	Timeout time.Duration `help:"Per-request timeout (overrides config)"`
	Plain   bool          `help:"Use the line-based console instead of the full-screen interface"`
	Pause   bool          `help:"Wait for enter between rounds (console only)"`
}

func (c *ClientCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := g.newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	url := cfg.Client.URL
	if c.URL != "" {
		url = c.URL
	}
	timeout := cfg.RequestTimeout()
	if c.Timeout > 0 {
		timeout = c.Timeout
	}
	player := cfg.Client.Player
	if c.Player != "" {
		player = c.Player
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl, err := client.Dial(ctx, url, timeout, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cl.Close(); err != nil {
			logger.Debug("Failed to close connection", "error", err)
		}
	}()
	logger.Info("Connected", "url", url)

	return runInteractive(cl, player, c.Plain, c.Pause, g, logger)
}

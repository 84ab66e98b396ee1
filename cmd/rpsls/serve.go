package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/rpsls/internal/metrics"
	"github.com/lox/rpsls/internal/server"
)

// ServeCmd runs the websocket server
type ServeCmd struct {
	Addr         string        `short:"a" help:"Address to bind to, host:port (overrides config)"`
	IdleTimeout  time.Duration `help:"Close connections idle for this long (overrides config)"`
	WinningScore int           `help:"Points needed to win a match (overrides config)"`
	Seed         *int64        `help:"Deterministic RNG seed (overrides config)"`
	Metrics      bool          `default:"true" negatable:"" help:"Expose Prometheus metrics on /metrics"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	logger, closeLog, err := g.newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	idle := cfg.IdleTimeout()
	if c.IdleTimeout > 0 {
		idle = c.IdleTimeout
	}
	score := cfg.Match.WinningScore
	if c.WinningScore > 0 {
		score = c.WinningScore
	}
	seed := cfg.Match.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}

	opts := []server.Option{
		server.WithIdleTimeout(idle),
		server.WithWinningScore(score),
		server.WithSeed(seed),
	}
	if c.Metrics {
		opts = append(opts, server.WithMetrics(metrics.NewManager()))
	}
	s := server.NewServer(registry, logger, opts...)

	logger.Info("Starting RPSLS server",
		"addr", addr,
		"opponents", registry.Len(),
		"winningScore", score,
		"idleTimeout", idle,
		"metrics", c.Metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx, addr)
}

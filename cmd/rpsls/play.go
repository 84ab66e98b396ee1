package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/lox/rpsls/internal/config"
	"github.com/lox/rpsls/internal/console"
	"github.com/lox/rpsls/internal/session"
	"github.com/lox/rpsls/internal/tui"
)

// PlayCmd plays locally against the built-in and configured opponents.
type PlayCmd struct {
	Player       string `short:"p" help:"Your name (prompted for when empty)"`
	Plain        bool   `help:"Use the line-based console instead of the full-screen interface"`
	Pause        bool   `help:"Wait for enter between rounds (console only)"`
	Seed         *int64 `help:"Deterministic RNG seed (overrides config)"`
	WinningScore int    `help:"Points needed to win a match (overrides config)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	logger, closeLog, err := g.newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	s := session.New(registry,
		session.WithLogger(logger),
		session.WithSeed(c.seed(cfg)),
		session.WithWinningScore(c.winningScore(cfg)),
	)
	logger.Info("Starting local session", "seed", s.Seed(), "opponents", registry.Len())

	return runInteractive(console.Local{Session: s}, c.Player, c.Plain, c.Pause, g, logger)
}

func (c *PlayCmd) seed(cfg *config.Config) int64 {
	if c.Seed != nil {
		return *c.Seed
	}
	return cfg.Match.Seed
}

func (c *PlayCmd) winningScore(cfg *config.Config) int {
	if c.WinningScore > 0 {
		return c.WinningScore
	}
	return cfg.Match.WinningScore
}

// runInteractive picks the console when asked to, or when stdout is not a
// terminal, and the full-screen interface otherwise.
func runInteractive(engine console.Engine, player string, plain, pause bool, g *Globals, logger *log.Logger) error {
	if plain || !isatty.IsTerminal(os.Stdout.Fd()) {
		return console.New(engine, os.Stdin, os.Stdout,
			console.WithPlayer(player),
			console.WithPause(pause),
			console.WithClearScreen(pause && !g.NoColor),
			console.WithLogger(logger),
		).Run()
	}
	return tui.Run(engine, logger, tui.WithPlayer(player))
}

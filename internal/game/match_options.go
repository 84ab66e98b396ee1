package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// DefaultWinningScore is the score that ends a match unless overridden.
const DefaultWinningScore = 5

// MatchOption configures a Match during creation.
type MatchOption func(*matchConfig)

type matchConfig struct {
	id           string
	winningScore int
	clock        quartz.Clock
	logger       *log.Logger
	observers    []Observer
}

// WithWinningScore sets the score a participant must reach to win.
// Values below one are ignored.
func WithWinningScore(score int) MatchOption {
	return func(c *matchConfig) {
		if score > 0 {
			c.winningScore = score
		}
	}
}

// WithClock injects the clock used to timestamp rounds.
func WithClock(clock quartz.Clock) MatchOption {
	return func(c *matchConfig) { c.clock = clock }
}

func WithLogger(logger *log.Logger) MatchOption {
	return func(c *matchConfig) { c.logger = logger }
}

// WithMatchID overrides the generated match id.
func WithMatchID(id string) MatchOption {
	return func(c *matchConfig) { c.id = id }
}

// WithObserver registers an observer for round and match events.
func WithObserver(o Observer) MatchOption {
	return func(c *matchConfig) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

func defaultMatchConfig() *matchConfig {
	return &matchConfig{
		winningScore: DefaultWinningScore,
		clock:        quartz.NewReal(),
		logger:       log.NewWithOptions(io.Discard, log.Options{}),
	}
}

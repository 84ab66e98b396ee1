package server

import (
	"time"

	"github.com/coder/quartz"

	"github.com/lox/rpsls/internal/metrics"
)

// Option configures a Server during creation.
type Option func(*Server)

// WithClock injects the clock used for idle timeouts and round timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithIdleTimeout closes connections that send nothing for d. Zero disables
// the timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.idleTimeout = d
		}
	}
}

// WithWinningScore sets the winning score of every match on the server.
func WithWinningScore(score int) Option {
	return func(s *Server) {
		if score > 0 {
			s.winningScore = score
		}
	}
}

// WithSeed makes opponent behaviour reproducible. Each session derives its
// own seed from it in connection order.
func WithSeed(seed int64) Option {
	return func(s *Server) { s.seed = seed }
}

// WithMetrics reports sessions, rounds and matches to m and serves it on /metrics.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) { s.metrics = m }
}

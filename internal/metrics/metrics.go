// Package metrics exposes Prometheus metrics for matches played on the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/rules"
)

// Manager owns the server's metrics. It implements game.Observer so a match
// can report to it directly.
type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry

	rounds          *prometheus.CounterVec
	moves           *prometheus.CounterVec
	matchesComplete *prometheus.CounterVec
	matchLength     prometheus.Histogram
	sessionsActive  prometheus.Gauge
	sessionsTotal   prometheus.Counter
	errors          *prometheus.CounterVec
}

var _ game.Observer = (*Manager)(nil)

// NewManager creates a manager on its own registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "rpsls",
		subsystem: "server",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rounds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_total",
		Help:      "Rounds played, by outcome from the human's side",
	}, []string{"outcome"})

	m.moves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "moves_total",
		Help:      "Gestures played, by side and kind",
	}, []string{"side", "kind"})

	m.matchesComplete = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_completed_total",
		Help:      "Matches that reached the winning score, by winning side",
	}, []string{"winner"})

	m.matchLength = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_rounds",
		Help:      "Rounds needed to complete a match",
		Buckets:   []float64{5, 6, 7, 8, 9, 10, 12, 15, 20, 30},
	})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_active",
		Help:      "Connected websocket sessions",
	})

	m.sessionsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_total",
		Help:      "Websocket sessions accepted since start",
	})

	m.errors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Error replies sent to clients, by code",
	}, []string{"code"})
}

// RoundPlayed records the outcome and both gestures of a round.
func (m *Manager) RoundPlayed(_ string, r game.RoundResult) {
	m.rounds.WithLabelValues(outcomeLabel(r.Outcome)).Inc()
	m.moves.WithLabelValues("human", r.HumanMove.Kind().String()).Inc()
	m.moves.WithLabelValues("computer", r.ComputerMove.Kind().String()).Inc()
}

// MatchCompleted records a finished match. The winner name is not used as a
// label since player names are unbounded.
func (m *Manager) MatchCompleted(_ string, _ string, rounds int) {
	m.matchLength.Observe(float64(rounds))
}

// MatchWon records which side won a completed match.
func (m *Manager) MatchWon(humanWon bool) {
	side := "computer"
	if humanWon {
		side = "human"
	}
	m.matchesComplete.WithLabelValues(side).Inc()
}

func (m *Manager) SessionOpened() {
	m.sessionsActive.Inc()
	m.sessionsTotal.Inc()
}

func (m *Manager) SessionClosed() {
	m.sessionsActive.Dec()
}

// ErrorSent counts an error reply.
func (m *Manager) ErrorSent(code string) {
	m.errors.WithLabelValues(code).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcomeLabel(o rules.Outcome) string {
	switch o {
	case rules.FirstWins:
		return "human"
	case rules.SecondWins:
		return "computer"
	default:
		return "tie"
	}
}

// Package simulator plays many computer-versus-computer matches to compare
// opponent profiles.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/fileutil"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/randutil"
	"github.com/lox/rpsls/internal/statistics"
	"github.com/lox/rpsls/rules"
)

// DefaultMaxRounds caps a match so that two opponents which can only tie
// (Hal against Hal) still terminate.
const DefaultMaxRounds = 1000

// Config holds configuration for running simulations
type Config struct {
	Matches      int
	ProfileA     bot.Profile
	ProfileB     bot.Profile
	Seed         int64
	WinningScore int
	MaxRounds    int
	Workers      int
	Logger       *log.Logger

	// Progress, when set, is called after every match from the worker
	// goroutines. It must be safe for concurrent use.
	Progress func(done, total int)
}

// Simulator runs match simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.WinningScore <= 0 {
		config.WinningScore = game.DefaultWinningScore
	}
	if config.MaxRounds <= 0 {
		config.MaxRounds = DefaultMaxRounds
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	config.Seed = randutil.Resolve(config.Seed)
	logger := config.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}
}

// Seed is the resolved seed the matches are derived from.
func (s *Simulator) Seed() int64 { return s.config.Seed }

// Run plays every match and aggregates the results. Matches are independent
// and seeded from Config.Seed by index, so the result does not depend on the
// number of workers.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Matches <= 0 {
		return nil, fmt.Errorf("invalid match count: %d", s.config.Matches)
	}
	for _, p := range []bot.Profile{s.config.ProfileA, s.config.ProfileB} {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	s.logger.Info("Starting simulation",
		"a", s.config.ProfileA.Name,
		"b", s.config.ProfileB.Name,
		"matches", s.config.Matches,
		"workers", s.config.Workers,
		"seed", s.config.Seed)

	results := make([]statistics.MatchResult, s.config.Matches)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.playMatch(randutil.Derive(s.config.Seed, i))
			if err != nil {
				return fmt.Errorf("match %d: %w", i+1, err)
			}
			results[i] = r
			n := int(done.Add(1))
			if s.config.Progress != nil {
				s.config.Progress(n, s.config.Matches)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete",
		"duration", time.Since(start).Round(time.Millisecond),
		"winRateA", fmt.Sprintf("%.3f", stats.WinRate()),
		"unfinished", stats.Unfinished)
	return stats, nil
}

// playMatch runs one match to completion or to the round cap.
func (s *Simulator) playMatch(seed int64) (statistics.MatchResult, error) {
	nameA, nameB := participantNames(s.config.ProfileA.Name, s.config.ProfileB.Name)

	stratA, err := s.config.ProfileA.NewStrategy(randutil.New(randutil.Derive(seed, 0)), s.logger)
	if err != nil {
		return statistics.MatchResult{}, err
	}
	stratB, err := s.config.ProfileB.NewStrategy(randutil.New(randutil.Derive(seed, 1)), s.logger)
	if err != nil {
		return statistics.MatchResult{}, err
	}

	a := game.NewParticipant(nameA, stratA)
	b := game.NewParticipant(nameB, stratB)
	m, err := game.NewMatch(a, b,
		game.WithWinningScore(s.config.WinningScore),
		game.WithLogger(s.logger),
	)
	if err != nil {
		return statistics.MatchResult{}, err
	}

	result := statistics.MatchResult{Seed: seed}
	for !m.IsComplete() && m.RoundsPlayed() < s.config.MaxRounds {
		r, err := m.PlayRound("")
		if err != nil {
			return statistics.MatchResult{}, err
		}
		if r.Outcome == rules.Tie {
			result.Ties++
		}
	}

	result.Rounds = m.RoundsPlayed()
	result.ScoreA = a.Score()
	result.ScoreB = b.Score()
	if winner, ok := m.Winner(); ok {
		result.Winner = statistics.SideA
		if winner == nameB {
			result.Winner = statistics.SideB
		}
	}
	for k, n := range a.MoveCounts() {
		result.MovesA[k] = n
	}
	for k, n := range b.MoveCounts() {
		result.MovesB[k] = n
	}
	return result, nil
}

// participantNames keeps a self-match legal by telling the sides apart.
func participantNames(a, b string) (string, string) {
	if a != b {
		return a, b
	}
	return a + " (A)", b + " (B)"
}

// Report is the JSON summary written by WriteReport
type Report struct {
	ProfileA     string             `json:"profile_a"`
	ProfileB     string             `json:"profile_b"`
	Seed         int64              `json:"seed"`
	WinningScore int                `json:"winning_score"`
	Matches      int                `json:"matches"`
	WinsA        int                `json:"wins_a"`
	WinsB        int                `json:"wins_b"`
	Unfinished   int                `json:"unfinished"`
	WinRateA     float64            `json:"win_rate_a"`
	WinRateCI95  [2]float64         `json:"win_rate_ci95"`
	MeanRounds   float64            `json:"mean_rounds"`
	MedianRounds float64            `json:"median_rounds"`
	TieRate      float64            `json:"tie_rate"`
	MoveShareA   map[string]float64 `json:"move_share_a"`
	MoveShareB   map[string]float64 `json:"move_share_b"`
}

// NewReport summarises stats for the configured profiles
func (s *Simulator) NewReport(stats *statistics.Statistics) Report {
	low, high := stats.WinRateCI95()
	r := Report{
		ProfileA:     s.config.ProfileA.Name,
		ProfileB:     s.config.ProfileB.Name,
		Seed:         s.config.Seed,
		WinningScore: s.config.WinningScore,
		Matches:      stats.Matches,
		WinsA:        stats.WinsA,
		WinsB:        stats.WinsB,
		Unfinished:   stats.Unfinished,
		WinRateA:     stats.WinRate(),
		WinRateCI95:  [2]float64{low, high},
		MeanRounds:   stats.MeanRounds(),
		MedianRounds: stats.MedianRounds(),
		TieRate:      stats.TieRate(),
		MoveShareA:   make(map[string]float64, rules.NumKinds),
		MoveShareB:   make(map[string]float64, rules.NumKinds),
	}
	for _, k := range rules.Kinds() {
		r.MoveShareA[k.String()] = stats.MoveShare(statistics.SideA, k)
		r.MoveShareB[k.String()] = stats.MoveShare(statistics.SideB, k)
	}
	return r
}

// WriteReport writes the report as JSON, atomically
func WriteReport(filename string, r Report) error {
	return fileutil.WriteJSONAtomic(filename, r, 0o644)
}

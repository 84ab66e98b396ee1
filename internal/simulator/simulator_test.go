package simulator

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/statistics"
	"github.com/lox/rpsls/rules"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func profile(t *testing.T, name string) bot.Profile {
	t.Helper()
	p, err := bot.DefaultRegistry().Lookup(name)
	require.NoError(t, err)
	return p
}

func TestRunHalAgainstSonny(t *testing.T) {
	// Hal only plays rock and Sonny never does, so no round can tie.
	sim := New(Config{
		Matches:  50,
		ProfileA: profile(t, "Hal"),
		ProfileB: profile(t, "Sonny"),
		Seed:     7,
		Logger:   testLogger(),
	})

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, stats.Validate())

	assert.Equal(t, 50, stats.Matches)
	assert.Zero(t, stats.Unfinished)
	assert.Equal(t, 1.0, stats.MoveShare(statistics.SideA, rules.Rock))
	assert.Zero(t, stats.MoveShare(statistics.SideB, rules.Rock))
	assert.Zero(t, stats.Ties)
	assert.GreaterOrEqual(t, stats.MeanRounds(), 5.0)
}

func TestRunIsDeterministicAcrossWorkerCounts(t *testing.T) {
	run := func(workers int) *statistics.Statistics {
		sim := New(Config{
			Matches:  40,
			ProfileA: profile(t, "Chappie"),
			ProfileB: profile(t, "R2D2"),
			Seed:     99,
			Workers:  workers,
			Logger:   testLogger(),
		})
		stats, err := sim.Run(context.Background())
		require.NoError(t, err)
		return stats
	}

	one := run(1)
	many := run(8)
	assert.Equal(t, one.Values, many.Values)
	assert.Equal(t, one.WinsA, many.WinsA)
	assert.Equal(t, one.MovesB, many.MovesB)
}

func TestRunCapsEndlessMatches(t *testing.T) {
	sim := New(Config{
		Matches:   3,
		ProfileA:  profile(t, "Hal"),
		ProfileB:  profile(t, "Hal"),
		MaxRounds: 20,
		Logger:    testLogger(),
	})

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Unfinished)
	assert.Equal(t, 60, stats.Rounds)
	assert.Equal(t, 60, stats.Ties)
}

func TestRunReportsProgress(t *testing.T) {
	var calls atomic.Int64
	sim := New(Config{
		Matches:  10,
		ProfileA: profile(t, "Chappie"),
		ProfileB: profile(t, "Sonny"),
		Workers:  4,
		Logger:   testLogger(),
		Progress: func(done, total int) {
			calls.Add(1)
			assert.Equal(t, 10, total)
			assert.LessOrEqual(t, done, total)
		},
	})

	_, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), calls.Load())
}

func TestRunRejectsBadConfig(t *testing.T) {
	sim := New(Config{Matches: 0, ProfileA: profile(t, "Hal"), ProfileB: profile(t, "Hal")})
	_, err := sim.Run(context.Background())
	assert.Error(t, err)

	sim = New(Config{Matches: 1, ProfileA: bot.Profile{Name: "Void"}, ProfileB: profile(t, "Hal")})
	_, err = sim.Run(context.Background())
	assert.Error(t, err)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(Config{Matches: 5, ProfileA: profile(t, "Hal"), ProfileB: profile(t, "Sonny"), Workers: 1})
	_, err := sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteReport(t *testing.T) {
	sim := New(Config{
		Matches:  5,
		ProfileA: profile(t, "Hal"),
		ProfileB: profile(t, "Sonny"),
		Seed:     3,
		Logger:   testLogger(),
	})
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(path, sim.NewReport(stats)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Hal", got.ProfileA)
	assert.Equal(t, "Sonny", got.ProfileB)
	assert.Equal(t, 5, got.Matches)
	assert.Equal(t, 1.0, got.MoveShareA["rock"])
	assert.Equal(t, got.WinsA+got.WinsB+got.Unfinished, got.Matches)
}

func TestParticipantNames(t *testing.T) {
	a, b := participantNames("Hal", "Sonny")
	assert.Equal(t, "Hal", a)
	assert.Equal(t, "Sonny", b)

	a, b = participantNames("Hal", "Hal")
	assert.NotEqual(t, a, b)
}

func TestZeroSeedIsResolved(t *testing.T) {
	sim := New(Config{
		Matches:  5,
		ProfileA: profile(t, "Chappie"),
		ProfileB: profile(t, "Sonny"),
		Logger:   testLogger(),
	})
	require.NotZero(t, sim.Seed())

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sim.Seed(), sim.NewReport(stats).Seed)

	// Replaying the resolved seed reproduces the run.
	replay := New(Config{
		Matches:  5,
		ProfileA: profile(t, "Chappie"),
		ProfileB: profile(t, "Sonny"),
		Seed:     sim.Seed(),
		Logger:   testLogger(),
	})
	again, err := replay.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.WinsA, again.WinsA)
	assert.Equal(t, stats.MeanRounds(), again.MeanRounds())
}

// Package statistics aggregates the results of simulated matches.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/rpsls/rules"
)

// Side identifies one of the two simulated participants.
type Side int

const (
	NoSide Side = iota // match hit the round cap without a winner
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "none"
	}
}

// MatchResult represents the outcome of a single simulated match
type MatchResult struct {
	Seed   int64 // RNG seed for this match (for replay)
	Winner Side
	Rounds int
	Ties   int
	ScoreA int
	ScoreB int
	MovesA [rules.NumKinds]int // indexed by rules.Kind
	MovesB [rules.NumKinds]int
}

// Statistics tracks aggregate simulation statistics
type Statistics struct {
	Matches    int
	WinsA      int
	WinsB      int
	Unfinished int

	Rounds     int
	Ties       int
	SumRounds2 float64   // Sum of squares for variance calculation
	Values     []float64 // rounds per match, for median/percentile

	MovesA [rules.NumKinds]int
	MovesB [rules.NumKinds]int
}

// Add incorporates a match result
func (s *Statistics) Add(r MatchResult) {
	s.Matches++
	switch r.Winner {
	case SideA:
		s.WinsA++
	case SideB:
		s.WinsB++
	default:
		s.Unfinished++
	}

	rounds := float64(r.Rounds)
	s.Rounds += r.Rounds
	s.Ties += r.Ties
	s.SumRounds2 += rounds * rounds
	s.Values = append(s.Values, rounds)

	for i := range s.MovesA {
		s.MovesA[i] += r.MovesA[i]
		s.MovesB[i] += r.MovesB[i]
	}
}

// WinRate returns the share of all matches won by side A
func (s *Statistics) WinRate() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.WinsA) / float64(s.Matches)
}

// WinRateStdError is the binomial standard error of WinRate
func (s *Statistics) WinRateStdError() float64 {
	if s.Matches == 0 {
		return 0
	}
	p := s.WinRate()
	return math.Sqrt(p * (1 - p) / float64(s.Matches))
}

// WinRateCI95 returns the 95% confidence interval for WinRate, clipped to [0, 1]
func (s *Statistics) WinRateCI95() (float64, float64) {
	p := s.WinRate()
	margin := 1.96 * s.WinRateStdError()
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

// MeanRounds returns the average match length in rounds
func (s *Statistics) MeanRounds() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.Rounds) / float64(s.Matches)
}

// RoundsVariance returns the sample variance of match length
func (s *Statistics) RoundsVariance() float64 {
	if s.Matches < 2 {
		return 0
	}
	mean := s.MeanRounds()
	return (s.SumRounds2 - float64(s.Matches)*mean*mean) / float64(s.Matches-1)
}

// RoundsStdDev returns the sample standard deviation of match length
func (s *Statistics) RoundsStdDev() float64 {
	return math.Sqrt(s.RoundsVariance())
}

// TieRate returns the share of rounds that were ties
func (s *Statistics) TieRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Ties) / float64(s.Rounds)
}

// MedianRounds returns the median match length
func (s *Statistics) MedianRounds() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the match length at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// MoveShare returns how often side played k, as a share of its moves
func (s *Statistics) MoveShare(side Side, k rules.Kind) float64 {
	moves := s.MovesA
	if side == SideB {
		moves = s.MovesB
	}
	total := 0
	for _, n := range moves {
		total += n
	}
	if total == 0 || !k.Valid() {
		return 0
	}
	return float64(moves[k]) / float64(total)
}

// Validate checks the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Matches <= 0 {
		return fmt.Errorf("invalid match count: %d", s.Matches)
	}

	if s.WinsA+s.WinsB+s.Unfinished != s.Matches {
		return fmt.Errorf("outcomes (%d+%d+%d) do not add up to matches (%d)",
			s.WinsA, s.WinsB, s.Unfinished, s.Matches)
	}

	if len(s.Values) != s.Matches {
		return fmt.Errorf("values array length (%d) does not match match count (%d)",
			len(s.Values), s.Matches)
	}

	if s.Ties > s.Rounds {
		return fmt.Errorf("ties (%d) exceed rounds (%d)", s.Ties, s.Rounds)
	}

	// Every round both sides play exactly one move.
	var a, b int
	for i := range s.MovesA {
		a += s.MovesA[i]
		b += s.MovesB[i]
	}
	if a != s.Rounds || b != s.Rounds {
		return fmt.Errorf("move totals (%d, %d) do not match rounds (%d)", a, b, s.Rounds)
	}

	return nil
}

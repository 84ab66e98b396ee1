package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/rpsls/rules"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// always plays the same kind.
type always rules.Kind

func (a always) Select(string) (rules.Move, error) {
	return rules.NewMove(rules.Kind(a))
}

// scripted plays kinds in order and records what it was recalibrated with.
type scripted struct {
	kinds []rules.Kind
	next  int

	calls    int
	lastOwn  []rules.Move
	lastOuts []string
	lastSelf string
}

func (s *scripted) Select(string) (rules.Move, error) {
	k := s.kinds[s.next%len(s.kinds)]
	s.next++
	return rules.NewMove(k)
}

func (s *scripted) Recalibrate(own []rules.Move, outcomes []string, self string) {
	s.calls++
	s.lastOwn = own
	s.lastOuts = outcomes
	s.lastSelf = self
}

// failing always refuses to select.
type failing struct{ err error }

func (f failing) Select(string) (rules.Move, error) { return rules.Move{}, f.err }

type recordingObserver struct {
	rounds    []RoundResult
	completed []string
}

func (r *recordingObserver) RoundPlayed(_ string, res RoundResult) {
	r.rounds = append(r.rounds, res)
}

func (r *recordingObserver) MatchCompleted(_ string, winner string, _ int) {
	r.completed = append(r.completed, winner)
}

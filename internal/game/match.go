package game

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/rpsls/internal/matchid"
	"github.com/lox/rpsls/rules"
)

// State is the match controller's position in its round cycle.
type State int

const (
	AwaitingRound State = iota
	RoundResolved
	MatchComplete
)

func (s State) String() string {
	switch s {
	case AwaitingRound:
		return "awaiting-round"
	case RoundResolved:
		return "round-resolved"
	case MatchComplete:
		return "match-complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RoundResult is everything a presentation layer needs to render a round.
type RoundResult struct {
	Number        int
	HumanMove     rules.Move
	ComputerMove  rules.Move
	Outcome       rules.Outcome
	Winner        string // participant name, or TieLabel
	HumanScore    int
	ComputerScore int
	Complete      bool
	PlayedAt      time.Time
}

// Observer receives match events. Calls happen synchronously on the
// goroutine driving the match.
type Observer interface {
	RoundPlayed(matchID string, r RoundResult)
	MatchCompleted(matchID string, winner string, rounds int)
}

// Match sequences rounds between a human and a computer participant.
// It is the sole writer of scores and of the winner history.
type Match struct {
	id           string
	human        *Participant
	computer     *Participant
	winners      []string
	rounds       []RoundResult
	state        State
	winningScore int
	clock        quartz.Clock
	logger       *log.Logger
	observers    []Observer
}

// NewMatch creates a match in the AwaitingRound state.
func NewMatch(human, computer *Participant, opts ...MatchOption) (*Match, error) {
	if human == nil || computer == nil {
		return nil, fmt.Errorf("both participants are required")
	}
	if err := checkNames(human, computer); err != nil {
		return nil, err
	}

	cfg := defaultMatchConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.id == "" {
		cfg.id = matchid.Generate()
	}

	m := &Match{
		id:           cfg.id,
		human:        human,
		computer:     computer,
		state:        AwaitingRound,
		winningScore: cfg.winningScore,
		clock:        cfg.clock,
		logger:       cfg.logger.WithPrefix("match").With("match", cfg.id),
		observers:    cfg.observers,
	}
	m.logger.Debug("Match created", "human", human.Name(), "computer", computer.Name(), "winningScore", m.winningScore)
	return m, nil
}

func checkNames(human, computer *Participant) error {
	switch {
	case human.Name() == computer.Name():
		return fmt.Errorf("%w: both are %q", ErrDuplicateName, human.Name())
	case human.Name() == TieLabel || computer.Name() == TieLabel:
		return fmt.Errorf("%w: %q is reserved", ErrDuplicateName, TieLabel)
	}
	return nil
}

func (m *Match) ID() string              { return m.id }
func (m *Match) Human() *Participant     { return m.human }
func (m *Match) Computer() *Participant  { return m.computer }
func (m *Match) State() State            { return m.state }
func (m *Match) WinningScore() int       { return m.winningScore }
func (m *Match) IsComplete() bool        { return m.state == MatchComplete }
func (m *Match) RoundsPlayed() int       { return len(m.rounds) }
func (m *Match) Rounds() []RoundResult   { return append([]RoundResult(nil), m.rounds...) }
func (m *Match) WinnerHistory() []string { return append([]string(nil), m.winners...) }

// Winner returns the name of the participant that reached the winning score.
func (m *Match) Winner() (string, bool) {
	switch {
	case m.human.Score() >= m.winningScore:
		return m.human.Name(), true
	case m.computer.Score() >= m.winningScore:
		return m.computer.Name(), true
	}
	return "", false
}

// PlayRound collects both moves, resolves the round and updates the score
// and winner history. An invalid human choice returns
// rules.ErrInvalidMoveKind and leaves the match untouched, so the caller can
// simply ask again.
func (m *Match) PlayRound(choice string) (RoundResult, error) {
	if m.state == MatchComplete {
		return RoundResult{}, ErrMatchComplete
	}

	humanMove, err := m.selectFor(m.human, choice)
	if err != nil {
		return RoundResult{}, err
	}
	computerMove, err := m.selectFor(m.computer, "")
	if err != nil {
		return RoundResult{}, fmt.Errorf("computer %s failed to select: %w", m.computer.Name(), err)
	}

	m.human.record(humanMove)
	m.computer.record(computerMove)
	m.state = RoundResolved

	outcome := rules.Resolve(humanMove, computerMove)
	label := TieLabel
	switch outcome {
	case rules.FirstWins:
		m.human.IncrementScore()
		label = m.human.Name()
	case rules.SecondWins:
		m.computer.IncrementScore()
		label = m.computer.Name()
	}
	m.winners = append(m.winners, label)

	_, done := m.Winner()
	res := RoundResult{
		Number:        len(m.rounds) + 1,
		HumanMove:     humanMove,
		ComputerMove:  computerMove,
		Outcome:       outcome,
		Winner:        label,
		HumanScore:    m.human.Score(),
		ComputerScore: m.computer.Score(),
		Complete:      done,
		PlayedAt:      m.clock.Now(),
	}
	m.rounds = append(m.rounds, res)

	m.logger.Debug("Round resolved",
		"round", res.Number,
		"human", humanMove,
		"computer", computerMove,
		"winner", label,
		"score", fmt.Sprintf("%d-%d", res.HumanScore, res.ComputerScore))

	for _, o := range m.observers {
		o.RoundPlayed(m.id, res)
	}

	if done {
		m.state = MatchComplete
		winner, _ := m.Winner()
		m.logger.Info("Match complete", "winner", winner, "rounds", len(m.rounds))
		for _, o := range m.observers {
			o.MatchCompleted(m.id, winner, len(m.rounds))
		}
	} else {
		m.state = AwaitingRound
	}
	return res, nil
}

// selectFor recalibrates learning strategies from the committed history and
// then asks for a move without recording it.
func (m *Match) selectFor(p *Participant, choice string) (rules.Move, error) {
	if r, ok := p.Strategy().(Recalibrator); ok {
		own := alignTail(p.history, len(m.winners))
		outcomes := m.winners[len(m.winners)-len(own):]
		r.Recalibrate(append([]rules.Move(nil), own...), append([]string(nil), outcomes...), p.Name())
	}
	return p.choose(choice)
}

// Restart zeroes both scores and returns the match to AwaitingRound.
//
// With keepOpponent the computer and every history carry on. Otherwise next
// replaces the computer; the winner history and round log start afresh with
// it, while the human keeps its move history.
func (m *Match) Restart(keepOpponent bool, next *Participant) error {
	if !keepOpponent {
		if next == nil {
			return ErrNoOpponent
		}
		if err := checkNames(m.human, next); err != nil {
			return err
		}
		m.logger.Info("Opponent replaced", "previous", m.computer.Name(), "next", next.Name())
		m.computer = next
		m.winners = nil
		m.rounds = nil
	}

	m.human.ResetScore()
	m.computer.ResetScore()
	m.state = AwaitingRound
	m.logger.Debug("Match restarted", "keepOpponent", keepOpponent)
	return nil
}

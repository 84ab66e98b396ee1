// Package session runs one player's matches against a chosen opponent and
// reports them in protocol terms. The websocket server holds one per
// connection; the local console and TUI hold one per process.
package session

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/protocol"
	"github.com/lox/rpsls/internal/randutil"
	"github.com/lox/rpsls/rules"
)

// DefaultPlayerName is used when the player gives none.
const DefaultPlayerName = "Player"

var (
	ErrNotStarted       = errors.New("no match in progress")
	ErrAlreadyStarted   = errors.New("match already started")
	ErrOpponentRequired = errors.New("an opponent is required")
)

// Option configures a Session.
type Option func(*Session)

func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithWinningScore sets the winning score for every match in the session.
func WithWinningScore(score int) Option {
	return func(s *Session) {
		if score > 0 {
			s.winningScore = score
		}
	}
}

// WithSeed seeds every opponent created by the session. Zero picks a
// time-based seed.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.seed = seed }
}

// WithObserver forwards match events, e.g. to metrics.
func WithObserver(o game.Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// Session is not safe for concurrent use.
type Session struct {
	registry     *bot.Registry
	clock        quartz.Clock
	logger       *log.Logger
	winningScore int
	seed         int64
	observers    []game.Observer

	opponents int // opponents created so far, for seed derivation
	match     *game.Match
	profile   bot.Profile
}

// New creates a session choosing opponents from registry.
func New(registry *bot.Registry, opts ...Option) *Session {
	s := &Session{
		registry:     registry,
		clock:        quartz.NewReal(),
		logger:       log.NewWithOptions(io.Discard, log.Options{}),
		winningScore: game.DefaultWinningScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed = randutil.Resolve(s.seed)
	return s
}

// Seed is the resolved seed, for logging and replay.
func (s *Session) Seed() int64 { return s.seed }

// Match returns the current match, or nil before Start.
func (s *Session) Match() *game.Match { return s.match }

// Opponent returns the current opponent's profile.
func (s *Session) Opponent() bot.Profile { return s.profile }

// Start begins the first match. An empty opponent selector picks the first
// profile.
func (s *Session) Start(player, opponent string) (*protocol.WelcomeData, error) {
	if s.match != nil {
		return nil, ErrAlreadyStarted
	}

	name := strings.TrimSpace(player)
	if name == "" {
		name = DefaultPlayerName
	}
	if strings.TrimSpace(opponent) == "" {
		opponent = "1"
	}
	computer, p, err := s.newOpponent(opponent)
	if err != nil {
		return nil, err
	}

	opts := []game.MatchOption{
		game.WithWinningScore(s.winningScore),
		game.WithClock(s.clock),
		game.WithLogger(s.logger),
	}
	for _, o := range s.observers {
		opts = append(opts, game.WithObserver(o))
	}
	m, err := game.NewMatch(game.NewParticipant(name, game.InteractiveStrategy{}), computer, opts...)
	if err != nil {
		return nil, err
	}
	s.match = m
	s.profile = p
	s.opponents++
	s.logger.Info("Match started", "match", m.ID(), "player", name, "opponent", p.Name, "seed", s.seed)
	return s.welcome(), nil
}

// Play resolves one round with the player's choice.
func (s *Session) Play(choice string) (*protocol.RoundData, error) {
	if s.match == nil {
		return nil, ErrNotStarted
	}
	res, err := s.match.PlayRound(choice)
	if err != nil {
		return nil, err
	}
	return s.roundData(res), nil
}

// Restart starts the next match, against the same opponent or a new one.
func (s *Session) Restart(keepOpponent bool, opponent string) (*protocol.WelcomeData, error) {
	if s.match == nil {
		return nil, ErrNotStarted
	}
	if keepOpponent {
		if err := s.match.Restart(true, nil); err != nil {
			return nil, err
		}
		return s.welcome(), nil
	}

	if strings.TrimSpace(opponent) == "" {
		return nil, ErrOpponentRequired
	}
	next, p, err := s.newOpponent(opponent)
	if err != nil {
		return nil, err
	}
	if err := s.match.Restart(false, next); err != nil {
		return nil, err
	}
	s.profile = p
	s.opponents++
	return s.welcome(), nil
}

// Profiles lists the opponents on offer, numbered for selection.
func (s *Session) Profiles() protocol.ProfilesData {
	return ProfilesData(s.registry)
}

// OpponentWeights reports the opponent's current selection weights when its
// strategy exposes them.
func (s *Session) OpponentWeights() (game.Weights, bool) {
	if s.match == nil {
		return nil, false
	}
	wr, ok := s.match.Computer().Strategy().(game.WeightReporter)
	if !ok {
		return nil, false
	}
	return wr.Weights(), true
}

func (s *Session) newOpponent(selector string) (*game.Participant, bot.Profile, error) {
	p, err := s.registry.Lookup(selector)
	if err != nil {
		return nil, bot.Profile{}, err
	}
	// The counter only advances once the match accepts the opponent, so a
	// rejected choice does not shift later seeds.
	rng := randutil.New(randutil.Derive(s.seed, s.opponents+1))
	strategy, err := p.NewStrategy(rng, s.logger)
	if err != nil {
		return nil, bot.Profile{}, err
	}
	return game.NewParticipant(p.Name, strategy), p, nil
}

func (s *Session) welcome() *protocol.WelcomeData {
	gestures := make([]protocol.GestureInfo, 0, rules.NumKinds)
	for _, k := range rules.Kinds() {
		gestures = append(gestures, protocol.GestureInfo{Key: k.Key(), Name: k.String()})
	}
	return &protocol.WelcomeData{
		MatchID:      s.match.ID(),
		PlayerName:   s.match.Human().Name(),
		Opponent:     ProfileInfo(s.profileNumber(), s.profile),
		WinningScore: s.match.WinningScore(),
		Gestures:     gestures,
	}
}

// profileNumber is the current opponent's menu number, or 0 if the
// registry does not list it.
func (s *Session) profileNumber() int {
	for i, p := range s.registry.Profiles() {
		if p.Name == s.profile.Name {
			return i + 1
		}
	}
	return 0
}

func (s *Session) roundData(res game.RoundResult) *protocol.RoundData {
	out := &protocol.RoundData{
		MatchID:       s.match.ID(),
		Number:        res.Number,
		PlayerMove:    res.HumanMove.Kind().String(),
		OpponentMove:  res.ComputerMove.Kind().String(),
		Winner:        res.Winner,
		Description:   rules.Describe(res.HumanMove, res.ComputerMove),
		PlayerScore:   res.HumanScore,
		OpponentScore: res.ComputerScore,
		Complete:      res.Complete,
		PlayedAt:      res.PlayedAt,
	}
	switch res.Outcome {
	case rules.FirstWins:
		out.Result = protocol.ResultWin
	case rules.SecondWins:
		out.Result = protocol.ResultLose
	default:
		out.Result = protocol.ResultTie
	}
	if res.Complete {
		out.MatchWinner, _ = s.match.Winner()
	}
	return out
}

// ProfileInfo describes p as menu entry number.
func ProfileInfo(number int, p bot.Profile) protocol.ProfileInfo {
	info := protocol.ProfileInfo{
		Number:      number,
		Name:        p.Name,
		Description: p.Description,
		Kind:        p.Kind(),
	}
	if !p.Adaptive {
		info.Weights = make(map[string]float64, rules.NumKinds)
		for _, k := range rules.Kinds() {
			info.Weights[k.String()] = p.Weights[k]
		}
	}
	return info
}

// ProfilesData lists every profile in r in menu order.
func ProfilesData(r *bot.Registry) protocol.ProfilesData {
	profiles := r.Profiles()
	out := protocol.ProfilesData{Profiles: make([]protocol.ProfileInfo, len(profiles))}
	for i, p := range profiles {
		out.Profiles[i] = ProfileInfo(i+1, p)
	}
	return out
}

// Package console plays matches over a plain line-oriented terminal: one
// prompt per line, answers read from any io.Reader. It drives either a local
// session or a remote server through the same Engine interface.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/protocol"
	"github.com/lox/rpsls/internal/session"
	"github.com/lox/rpsls/rules"
)

// Title is the game's display name.
const Title = "Rock, Paper, Scissors, Lizard, Spock"

// Engine plays matches on the console's behalf. *client.Client satisfies it
// directly; local play goes through Local.
type Engine interface {
	Profiles() ([]protocol.ProfileInfo, error)
	Start(player, opponent string) (*protocol.WelcomeData, error)
	Play(choice string) (*protocol.RoundData, error)
	Restart(keepOpponent bool, opponent string) (*protocol.WelcomeData, error)
}

// Local adapts an in-process session to Engine.
type Local struct {
	*session.Session
}

func (l Local) Profiles() ([]protocol.ProfileInfo, error) {
	return l.Session.Profiles().Profiles, nil
}

// Option configures a Console.
type Option func(*Console)

// WithPause waits for enter between rounds.
func WithPause(pause bool) Option {
	return func(c *Console) { c.pause = pause }
}

// WithClearScreen clears the terminal before each score board.
func WithClearScreen(enabled bool) Option {
	return func(c *Console) { c.clear = enabled }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Console) { c.logger = logger }
}

// WithPlayer skips the name prompt.
func WithPlayer(name string) Option {
	return func(c *Console) { c.player = strings.TrimSpace(name) }
}

// Console is the line-based game loop.
type Console struct {
	engine Engine
	in     *bufio.Scanner
	out    io.Writer
	term   *termenv.Output
	logger *log.Logger
	pause  bool
	clear  bool
	player string

	profiles []protocol.ProfileInfo
	welcome  *protocol.WelcomeData
	rounds   []protocol.RoundData
}

// New creates a console reading answers from in and writing to out.
func New(engine Engine, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		engine: engine,
		in:     bufio.NewScanner(in),
		out:    out,
		term:   termenv.NewOutput(out),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run plays matches until the player declines another one. Closing the
// input ends the session the same way.
func (c *Console) Run() error {
	err := c.run()
	if errors.Is(err, io.EOF) {
		c.println("")
		err = nil
	}
	if err == nil {
		c.println("Thank you for playing %s. Good bye!", Title)
	}
	return err
}

func (c *Console) run() error {
	profiles, err := c.engine.Profiles()
	if err != nil {
		return fmt.Errorf("failed to list opponents: %w", err)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no opponents available")
	}
	c.profiles = profiles

	c.println(headerStyle.Render(" Welcome to " + Title + ". "))
	name := c.player
	if name == "" || strings.EqualFold(name, game.TieLabel) {
		if name, err = c.askName(); err != nil {
			return err
		}
	}

	welcome, err := c.chooseOpponent(func(selector string) (*protocol.WelcomeData, error) {
		return c.engine.Start(name, selector)
	})
	if err != nil {
		return err
	}
	c.begin(welcome, true)
	c.println("The winner is the first to reach %d points. Good luck!", welcome.WinningScore)
	if err := c.waitForEnter(); err != nil {
		return err
	}

	for {
		if err := c.playMatch(); err != nil {
			return err
		}
		again, err := c.askYesNo("Would you like to play again (y/n)?", "Enter 'y' to play again or 'n' to quit.")
		if err != nil || !again {
			return err
		}
		change, err := c.askYesNo("Would you like to change opponent (y/n)?",
			fmt.Sprintf("Enter 'y' to change opponent or 'n' to stick with %s.", c.welcome.Opponent.Name))
		if err != nil {
			return err
		}
		if !change {
			welcome, err := c.engine.Restart(true, "")
			if err != nil {
				return err
			}
			c.begin(welcome, false)
			continue
		}
		welcome, err := c.chooseOpponent(func(selector string) (*protocol.WelcomeData, error) {
			return c.engine.Restart(false, selector)
		})
		if err != nil {
			return err
		}
		c.begin(welcome, true)
	}
}

// begin records a fresh match. The round log survives a restart against the
// same opponent, matching the engine's own history.
func (c *Console) begin(w *protocol.WelcomeData, newOpponent bool) {
	c.welcome = w
	if newOpponent {
		c.rounds = nil
	}
	c.logger.Debug("Match started", "match", w.MatchID, "opponent", w.Opponent.Name)
}

func (c *Console) playMatch() error {
	for {
		round, err := c.playRound()
		if err != nil {
			return err
		}
		if round.Complete {
			c.println(lineBreak)
			c.println(scoreStyle.Render(fmt.Sprintf("%s has %d points and has won!", round.MatchWinner, c.welcome.WinningScore)))
			c.println(lineBreak)
			return nil
		}
		if err := c.waitForEnter(); err != nil {
			return err
		}
	}
}

func (c *Console) playRound() (*protocol.RoundData, error) {
	c.showScores()

	var round *protocol.RoundData
	c.println(promptStyle.Render("Make your choice:"))
	for _, g := range c.welcome.Gestures {
		c.println("For %s, enter '%s'", g.Name, g.Key)
	}
	for {
		choice, err := c.readLine()
		if err != nil {
			return nil, err
		}
		round, err = c.engine.Play(strings.ToLower(choice))
		if errors.Is(err, rules.ErrInvalidMoveKind) {
			c.println(errorStyle.Render("Please enter a valid choice."))
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	c.rounds = append(c.rounds, *round)

	c.println("%s chose: %s; %s chose: %s.", c.welcome.PlayerName, round.PlayerMove, c.welcome.Opponent.Name, round.OpponentMove)
	c.println(infoStyle.Render(round.Description))
	switch round.Result {
	case protocol.ResultWin:
		c.println(winStyle.Render(round.Winner + " won this round!"))
	case protocol.ResultLose:
		c.println(loseStyle.Render(round.Winner + " won this round!"))
	default:
		c.println(tieStyle.Render("It's a tie!"))
	}
	c.showHistory()
	return round, nil
}

func (c *Console) showScores() {
	if c.clear {
		c.term.ClearScreen()
	}
	score := c.scoreLine()
	c.println(scoreStyle.Render(score))
	c.println(lineBreak)
}

func (c *Console) scoreLine() string {
	player, opponent := 0, 0
	if n := len(c.rounds); n > 0 && !c.rounds[n-1].Complete {
		player, opponent = c.rounds[n-1].PlayerScore, c.rounds[n-1].OpponentScore
	}
	return fmt.Sprintf("Current scores: %s: %d; %s: %d", c.welcome.PlayerName, player, c.welcome.Opponent.Name, opponent)
}

func (c *Console) showHistory() {
	mine := make([]string, len(c.rounds))
	theirs := make([]string, len(c.rounds))
	winners := make([]string, len(c.rounds))
	for i, r := range c.rounds {
		mine[i] = r.PlayerMove
		theirs[i] = r.OpponentMove
		winners[i] = r.Winner
	}
	c.println(lineBreak)
	c.println("%s's moves: %s", c.welcome.PlayerName, strings.Join(mine, ", "))
	c.println("%s's moves: %s", c.welcome.Opponent.Name, strings.Join(theirs, ", "))
	c.println("Round winners: %s", strings.Join(winners, ", "))
}

func (c *Console) askName() (string, error) {
	c.println(promptStyle.Render("What is your name?"))
	for {
		name, err := c.readLine()
		if err != nil {
			return "", err
		}
		switch {
		case name == "":
			c.println(errorStyle.Render("Please enter your name."))
		case strings.EqualFold(name, game.TieLabel):
			c.println(errorStyle.Render("That name is taken, please choose another."))
		default:
			return name, nil
		}
	}
}

// chooseOpponent lists the opponents and passes the chosen menu number to
// start, repeating until the engine accepts it.
func (c *Console) chooseOpponent(start func(selector string) (*protocol.WelcomeData, error)) (*protocol.WelcomeData, error) {
	c.println(promptStyle.Render("Choose an opponent (enter the corresponding number):"))
	for _, p := range c.profiles {
		c.println("%d. %s %s", p.Number, p.Name, infoStyle.Render("("+p.Description+")"))
	}
	for {
		answer, err := c.readLine()
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr != nil || n < 1 || n > len(c.profiles) {
			c.println(errorStyle.Render("Please enter a valid number."))
			continue
		}
		w, err := start(strconv.Itoa(n))
		if errors.Is(err, bot.ErrUnknownProfile) {
			c.println(errorStyle.Render("Please enter a valid number."))
			continue
		}
		if errors.Is(err, game.ErrDuplicateName) {
			c.println(errorStyle.Render("That opponent shares your name, please pick another."))
			continue
		}
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}

func (c *Console) askYesNo(question, retry string) (bool, error) {
	c.println(promptStyle.Render(question))
	for {
		answer, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.println(errorStyle.Render(retry))
	}
}

func (c *Console) waitForEnter() error {
	if !c.pause {
		return nil
	}
	c.println(lineBreak)
	c.println("Press enter to continue...")
	_, err := c.readLine()
	return err
}

// readLine returns the next trimmed line, or io.EOF once input is exhausted.
func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) println(format string, args ...any) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, format)
		return
	}
	fmt.Fprintf(c.out, format+"\n", args...)
}

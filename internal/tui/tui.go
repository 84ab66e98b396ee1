// Package tui is the full-screen terminal front end: a scrolling game log,
// a sidebar with scores, history and the opponent's weights, and an input
// line for names, opponent numbers and gestures.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/console"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/protocol"
	"github.com/lox/rpsls/rules"
)

type phase int

const (
	phaseName phase = iota
	phaseOpponent
	phasePlaying
	phaseMatchOver
)

const (
	sidebarWidth   = 30
	historyShown   = 8
	weightBarWidth = 10
)

// weightSource is implemented by local engines that can see the opponent's
// live selection weights.
type weightSource interface {
	OpponentWeights() (game.Weights, bool)
}

// Option configures a Model.
type Option func(*Model)

// WithPlayer skips the name prompt.
func WithPlayer(name string) Option {
	return func(m *Model) { m.player = strings.TrimSpace(name) }
}

// Model is the Bubble Tea model for a game session.
type Model struct {
	engine console.Engine
	logger *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	phase      phase
	restarting bool // choosing an opponent for a rematch rather than the first match
	player     string
	profiles   []protocol.ProfileInfo
	welcome    *protocol.WelcomeData
	rounds     []protocol.RoundData
	gameLog    []string
	status     string
	err        error
	quitting   bool

	width  int
	height int
}

// NewModel lists the engine's opponents and prepares the name prompt.
func NewModel(engine console.Engine, logger *log.Logger, opts ...Option) (*Model, error) {
	profiles, err := engine.Profiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list opponents: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no opponents available")
	}

	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		engine:      engine,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		profiles:    profiles,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.addLog(HeaderStyle.Render(" Welcome to " + console.Title + ". "))
	if m.player != "" && !strings.EqualFold(m.player, game.TieLabel) {
		m.phase = phaseOpponent
		m.showOpponents()
	} else {
		m.player = ""
		m.addLog(PromptStyle.Render("What is your name?"))
	}
	return m, nil
}

// Run plays a session in the alternate screen until the player quits.
func Run(engine console.Engine, logger *log.Logger, opts ...Option) error {
	m, err := NewModel(engine, logger, opts...)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return m.Err()
}

// Err is the engine failure that ended the session, if any.
func (m *Model) Err() error { return m.err }

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m.quit()
		case "pgup":
			m.logViewport.HalfPageUp()
			return m, nil
		case "pgdown":
			m.logViewport.HalfPageDown()
			return m, nil
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			m.submit(value)
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.phase == phaseMatchOver {
			return m.afterMatch(msg.String())
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// afterMatch handles the single-key choices offered once a match is won.
func (m *Model) afterMatch(key string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(key) {
	case "r", "y":
		w, err := m.engine.Restart(true, "")
		if err != nil {
			m.fail(err)
			return m, tea.Quit
		}
		m.begin(w, false)
	case "c":
		m.phase = phaseOpponent
		m.restarting = true
		m.status = ""
		m.input.Focus()
		m.showOpponents()
	case "q", "n":
		m.addLog(fmt.Sprintf("Thank you for playing %s. Good bye!", console.Title))
		return m.quit()
	}
	return m, nil
}

func (m *Model) submit(value string) {
	m.status = ""
	switch m.phase {
	case phaseName:
		m.submitName(value)
	case phaseOpponent:
		m.submitOpponent(value)
	case phasePlaying:
		m.submitMove(value)
	}
}

func (m *Model) submitName(name string) {
	switch {
	case name == "":
		m.status = "Please enter your name."
	case strings.EqualFold(name, game.TieLabel):
		m.status = "That name is taken, please choose another."
	default:
		m.player = name
		m.phase = phaseOpponent
		m.showOpponents()
	}
}

func (m *Model) showOpponents() {
	m.addLog(PromptStyle.Render("Choose an opponent (enter the corresponding number):"))
	for _, p := range m.profiles {
		m.addLog(fmt.Sprintf("%d. %s %s", p.Number, p.Name, InfoStyle.Render("("+p.Description+")")))
	}
}

func (m *Model) submitOpponent(value string) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > len(m.profiles) {
		m.status = "Please enter a valid number."
		return
	}

	var w *protocol.WelcomeData
	if m.restarting {
		w, err = m.engine.Restart(false, value)
	} else {
		w, err = m.engine.Start(m.player, value)
	}
	switch {
	case errors.Is(err, bot.ErrUnknownProfile):
		m.status = "Please enter a valid number."
	case errors.Is(err, game.ErrDuplicateName):
		m.status = "That opponent shares your name, please pick another."
	case err != nil:
		m.fail(err)
	default:
		first := !m.restarting
		m.begin(w, true)
		if first {
			m.addLog(fmt.Sprintf("The winner is the first to reach %d points. Good luck!", w.WinningScore))
		}
	}
}

func (m *Model) submitMove(choice string) {
	round, err := m.engine.Play(strings.ToLower(choice))
	if errors.Is(err, rules.ErrInvalidMoveKind) {
		m.status = "Please enter a valid choice."
		return
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.rounds = append(m.rounds, *round)

	m.addLog(fmt.Sprintf("Round %d: %s chose %s; %s chose %s.", round.Number,
		m.welcome.PlayerName, round.PlayerMove, m.welcome.Opponent.Name, round.OpponentMove))
	switch round.Result {
	case protocol.ResultWin:
		m.addLog(WinStyle.Render(round.Description + ". " + round.Winner + " won this round!"))
	case protocol.ResultLose:
		m.addLog(LoseStyle.Render(round.Description + ". " + round.Winner + " won this round!"))
	default:
		m.addLog(TieStyle.Render(round.Description + ". It's a tie!"))
	}

	if round.Complete {
		m.phase = phaseMatchOver
		m.input.Blur()
		m.addLog(ScoreStyle.Render(fmt.Sprintf("%s has %d points and has won!", round.MatchWinner, m.welcome.WinningScore)))
		m.addLog(PromptStyle.Render("Press r to play again, c to change opponent or q to quit."))
	}
}

// begin records a fresh match. The round log survives a rematch against the
// same opponent.
func (m *Model) begin(w *protocol.WelcomeData, newOpponent bool) {
	m.welcome = w
	m.phase = phasePlaying
	m.restarting = false
	m.status = ""
	if newOpponent {
		m.rounds = nil
	}
	m.input.Focus()
	m.logger.Debug("Match started", "match", w.MatchID, "opponent", w.Opponent.Name)
	m.addLog(HeaderStyle.Render(fmt.Sprintf(" %s vs %s ", w.PlayerName, w.Opponent.Name)))
}

func (m *Model) fail(err error) {
	m.logger.Error("Engine failed", "error", err)
	m.err = err
	m.quitting = true
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	inputContent := m.renderInputPane()
	inputHeight := lipgloss.Height(inputContent)
	inputPane := inputPaneStyle.
		Width(max(m.width-2, 1)).
		Height(max(inputHeight, 1)).
		Render(inputContent)

	paneHeight := max(m.height-inputHeight-4, 1)
	sidebar := paneStyle.
		Width(sidebarWidth).
		Height(paneHeight).
		Render(m.renderSidebar())

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	logPane := paneStyle.
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, inputPane)
}

func (m *Model) renderInputPane() string {
	var b strings.Builder
	if m.status != "" {
		b.WriteString(ErrorStyle.Render(m.status))
		b.WriteString("\n")
	}

	switch m.phase {
	case phaseName:
		m.input.Placeholder = "Your name"
	case phaseOpponent:
		m.input.Placeholder = fmt.Sprintf("Opponent number (1-%d)", len(m.profiles))
	case phasePlaying:
		m.input.Placeholder = strings.Join(rules.Keys(), ", ")
	}
	if m.phase == phaseMatchOver {
		b.WriteString(PromptStyle.Render("r: play again  c: change opponent  q: quit"))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("PgUp/PgDn scroll log • Esc to quit"))
	return b.String()
}

func (m *Model) renderSidebar() string {
	if m.welcome == nil {
		return InfoStyle.Render("No match yet")
	}

	var b strings.Builder
	player, opponent := m.scores()
	fmt.Fprintf(&b, "%s\n", ScoreStyle.Render("Score"))
	fmt.Fprintf(&b, "  %s: %d\n", m.welcome.PlayerName, player)
	fmt.Fprintf(&b, "  %s: %d\n", m.welcome.Opponent.Name, opponent)
	fmt.Fprintf(&b, "  %s\n\n", InfoStyle.Render(fmt.Sprintf("first to %d", m.welcome.WinningScore)))

	fmt.Fprintf(&b, "%s %s\n", ScoreStyle.Render(m.welcome.Opponent.Name), InfoStyle.Render("("+m.welcome.Opponent.Kind+")"))
	if w, ok := m.opponentWeights(); ok {
		for _, k := range rules.Kinds() {
			p := w.Probability(k)
			bar := strings.Repeat("█", int(p*weightBarWidth+0.5))
			fmt.Fprintf(&b, "  %-8s %s %.2f\n", k, WeightBarStyle.Render(fmt.Sprintf("%-*s", weightBarWidth, bar)), p)
		}
	} else {
		fmt.Fprintf(&b, "  %s\n", InfoStyle.Render("learning from its wins"))
	}

	if len(m.rounds) > 0 {
		fmt.Fprintf(&b, "\n%s\n", ScoreStyle.Render("Recent rounds"))
		start := max(len(m.rounds)-historyShown, 0)
		for _, r := range m.rounds[start:] {
			fmt.Fprintf(&b, "  %d. %s/%s %s\n", r.Number, r.PlayerMove, r.OpponentMove, r.Winner)
		}
	}
	return b.String()
}

func (m *Model) scores() (int, int) {
	n := len(m.rounds)
	if n == 0 {
		return 0, 0
	}
	last := m.rounds[n-1]
	if last.Complete && m.phase != phaseMatchOver {
		return 0, 0
	}
	return last.PlayerScore, last.OpponentScore
}

// opponentWeights prefers the live weights of a local opponent and falls
// back to the weights advertised in its profile.
func (m *Model) opponentWeights() (game.Weights, bool) {
	if ws, ok := m.engine.(weightSource); ok {
		if w, ok := ws.OpponentWeights(); ok {
			return w, true
		}
	}
	if len(m.welcome.Opponent.Weights) == 0 {
		return nil, false
	}
	w, err := game.ParseWeights(m.welcome.Opponent.Weights)
	if err != nil {
		return nil, false
	}
	return w, true
}

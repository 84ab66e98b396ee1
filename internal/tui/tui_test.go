package tui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/console"
	"github.com/lox/rpsls/internal/protocol"
	"github.com/lox/rpsls/internal/session"
	"github.com/lox/rpsls/rules"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	s := session.New(bot.DefaultRegistry(), session.WithSeed(7), session.WithWinningScore(2))
	m, err := NewModel(console.Local{Session: s}, quietLogger())
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func typeLine(m *Model, text string) tea.Cmd {
	if text != "" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func press(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return cmd
}

func logText(m *Model) string {
	return strings.Join(m.gameLog, "\n")
}

func TestModelPlaysMatchAgainstHal(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, logText(m), "What is your name?")

	typeLine(m, "")
	assert.Equal(t, "Please enter your name.", m.status)
	typeLine(m, "Ada")
	assert.Equal(t, phaseOpponent, m.phase)
	assert.Contains(t, logText(m), "2. Hal")

	typeLine(m, "7")
	assert.Equal(t, "Please enter a valid number.", m.status)
	typeLine(m, "2")
	require.Equal(t, phasePlaying, m.phase)
	assert.Contains(t, logText(m), "The winner is the first to reach 2 points. Good luck!")

	typeLine(m, "x")
	assert.Equal(t, "Please enter a valid choice.", m.status)
	assert.Empty(t, m.rounds)

	typeLine(m, "p")
	assert.Empty(t, m.status)
	require.Len(t, m.rounds, 1)
	assert.Contains(t, logText(m), "Round 1: Ada chose paper; Hal chose rock.")
	assert.Contains(t, logText(m), "Paper covers rock. Ada won this round!")

	typeLine(m, "sp")
	assert.Equal(t, phaseMatchOver, m.phase)
	assert.Contains(t, logText(m), "Ada has 2 points and has won!")

	view := m.View()
	assert.Contains(t, view, "Ada: 2")
	assert.Contains(t, view, "Hal: 0")
	assert.Contains(t, view, "rock")
	assert.Contains(t, view, "1.00")
	assert.Contains(t, view, "r: play again")
}

func TestModelRematchKeepsHistory(t *testing.T) {
	m := newTestModel(t)
	typeLine(m, "Ada")
	typeLine(m, "2")
	typeLine(m, "p")
	typeLine(m, "p")
	require.Equal(t, phaseMatchOver, m.phase)

	press(m, "r")
	assert.Equal(t, phasePlaying, m.phase)
	assert.Len(t, m.rounds, 2)
	player, opponent := m.scores()
	assert.Zero(t, player)
	assert.Zero(t, opponent)

	typeLine(m, "sc")
	require.Len(t, m.rounds, 3)
	assert.Equal(t, 3, m.rounds[2].Number)
	assert.Equal(t, protocol.ResultLose, m.rounds[2].Result)
}

func TestModelChangesOpponent(t *testing.T) {
	m := newTestModel(t)
	typeLine(m, "Ada")
	typeLine(m, "2")
	typeLine(m, "p")
	typeLine(m, "p")

	press(m, "c")
	assert.Equal(t, phaseOpponent, m.phase)
	typeLine(m, "4")
	require.Equal(t, phasePlaying, m.phase)
	assert.Equal(t, "R2D2", m.welcome.Opponent.Name)
	assert.Empty(t, m.rounds)

	typeLine(m, "l")
	require.Len(t, m.rounds, 1)

	// The adaptive opponent reports live weights through the local session.
	w, ok := m.opponentWeights()
	require.True(t, ok)
	for _, k := range rules.Kinds() {
		assert.Positive(t, w[k], "kind %s", k)
	}
	assert.Contains(t, m.View(), "R2D2 (adaptive)")
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	typeLine(m, "Ada")
	typeLine(m, "2")
	typeLine(m, "p")
	typeLine(m, "p")

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, logText(m), "Good bye!")
	assert.Empty(t, m.View())
	assert.NoError(t, m.Err())
}

func TestModelEscQuitsAnyTime(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelRejectsClashingNames(t *testing.T) {
	m := newTestModel(t)
	typeLine(m, "tie")
	assert.Equal(t, "That name is taken, please choose another.", m.status)

	typeLine(m, "Hal")
	typeLine(m, "2")
	assert.Equal(t, "That opponent shares your name, please pick another.", m.status)
	assert.Equal(t, phaseOpponent, m.phase)
}

type failingEngine struct {
	console.Engine
	err error
}

func (f failingEngine) Play(string) (*protocol.RoundData, error) { return nil, f.err }

func TestModelStopsOnEngineFailure(t *testing.T) {
	boom := errors.New("connection lost")
	s := session.New(bot.DefaultRegistry(), session.WithSeed(7))
	m, err := NewModel(failingEngine{Engine: console.Local{Session: s}, err: boom}, quietLogger())
	require.NoError(t, err)

	typeLine(m, "Ada")
	typeLine(m, "1")
	cmd := typeLine(m, "r")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, m.Err(), boom)
}

func TestViewBeforeSizing(t *testing.T) {
	s := session.New(bot.DefaultRegistry())
	m, err := NewModel(console.Local{Session: s}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "Loading...", m.View())
}

func TestModelWithPlayerSkipsNamePrompt(t *testing.T) {
	s := session.New(bot.DefaultRegistry(), session.WithSeed(7))
	m, err := NewModel(console.Local{Session: s}, quietLogger(), WithPlayer("  Ada "))
	require.NoError(t, err)
	assert.Equal(t, phaseOpponent, m.phase)
	assert.NotContains(t, logText(m), "What is your name?")

	typeLine(m, "1")
	require.Equal(t, phasePlaying, m.phase)
	assert.Equal(t, "Ada", m.welcome.PlayerName)
}

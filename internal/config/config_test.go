package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/rules"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rpsls.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, game.DefaultWinningScore, cfg.Match.WinningScore)
	assert.Equal(t, "localhost:8080", cfg.ServerAddress())
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "http://localhost:8080", cfg.Client.URL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Empty(t, cfg.Profiles)
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
match {
  winning_score = 3
  seed          = 42
}

server {
  address      = "0.0.0.0"
  port         = 9000
  idle_timeout = 30
  log_level    = "debug"
}

client {
  url    = "https://rpsls.example.com"
  player = "Ada"
}

profile "Mirror" {
  description = "Leans on paper and spock"
  weights     = { paper = 0.5, sp = 0.5 }
}

profile "Learner" {
  adaptive = true
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Match.WinningScore)
	assert.Equal(t, int64(42), cfg.Match.Seed)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddress())
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout())
	assert.Equal(t, "https://rpsls.example.com", cfg.Client.URL)
	assert.Equal(t, "Ada", cfg.Client.Player)
	require.Len(t, cfg.Profiles, 2)

	r, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, 6, r.Len())

	mirror, err := r.Lookup("5")
	require.NoError(t, err)
	assert.Equal(t, "Mirror", mirror.Name)
	assert.Equal(t, 0.5, mirror.Weights[rules.Paper])
	assert.Equal(t, 0.5, mirror.Weights[rules.Spock])
	assert.Equal(t, 0.0, mirror.Weights[rules.Rock])

	learner, err := r.Lookup("learner")
	require.NoError(t, err)
	assert.True(t, learner.Adaptive)
}

func TestLoadPartialFileAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `match { seed = 7 }`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Match.Seed)
	assert.Equal(t, game.DefaultWinningScore, cfg.Match.WinningScore)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestClientURLFollowsServerAddress(t *testing.T) {
	cfg, err := Load(writeConfig(t, `server {
  port = 9090
}`))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090", cfg.Client.URL)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		body string
		is   error
	}{
		{"syntax", `match {`, nil},
		{"unknown block", `table "x" {}`, nil},
		{"bad port", `server { port = 70000 }`, nil},
		{"negative score", `match { winning_score = -1 }`, nil},
		{"degenerate weights", `profile "Void" { weights = { rock = 0 } }`, game.ErrDegenerateWeights},
		{"unknown kind", `profile "Boom" { weights = { dynamite = 1 } }`, rules.ErrInvalidMoveKind},
		{"duplicate of builtin", `profile "hal" { weights = { paper = 1 } }`, bot.ErrDuplicateProfile},
		{"numeric name", `profile "3" { weights = { paper = 1 } }`, nil},
		{"kind named twice", `profile "Twice" { weights = { r = 1, rock = 0 } }`, game.ErrDegenerateWeights},
		{"adaptive with weights", `profile "Odd" {
  adaptive = true
  weights  = { rock = 1 }
}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestApplyProfilesStopsAtFirstError(t *testing.T) {
	cfg := Default()
	cfg.Profiles = []ProfileConfig{
		{Name: "Paper", Weights: map[string]float64{"p": 1}},
		{Name: "Paper", Weights: map[string]float64{"p": 1}},
	}
	r := bot.DefaultRegistry()
	err := cfg.ApplyProfiles(r)
	assert.ErrorIs(t, err, bot.ErrDuplicateProfile)
	assert.Equal(t, 5, r.Len(), "profiles before the failing one stay registered")
}

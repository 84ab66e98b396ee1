package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/rpsls/internal/config"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string           `short:"c" default:"${config_file}" help:"Path to HCL configuration file"`
	LogLevel string           `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	LogFile  string           `help:"Append logs to this file"`
	NoColor  bool             `help:"Disable coloured output"`
	Version  kong.VersionFlag `short:"v" help:"Show version"`
}

// loadConfig reads the config file and applies the colour setting.
func (g *Globals) loadConfig() (*config.Config, error) {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	return cfg, nil
}

// newLogger builds the logger for a command. Logs go to --log-file when set,
// otherwise to fallback. Interactive commands pass io.Discard so log lines
// never land on the game screen.
func (g *Globals) newLogger(cfg *config.Config, fallback io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Server.LogLevel, err)
	}

	out, closer := fallback, func() {}
	if g.LogFile != "" {
		f, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
			}
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	return logger, closer, nil
}

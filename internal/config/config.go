// Package config loads the optional rpsls.hcl file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/game"
)

// DefaultFilename is looked up in the working directory when --config is not given.
const DefaultFilename = "rpsls.hcl"

// Config represents the complete configuration file
type Config struct {
	Match    MatchSettings   `hcl:"match,block"`
	Server   ServerSettings  `hcl:"server,block"`
	Client   ClientSettings  `hcl:"client,block"`
	Profiles []ProfileConfig `hcl:"profile,block"`
}

// MatchSettings controls how matches are played
type MatchSettings struct {
	WinningScore int   `hcl:"winning_score,optional"`
	Seed         int64 `hcl:"seed,optional"`
}

// ServerSettings contains websocket server configuration
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	IdleTimeout int    `hcl:"idle_timeout,optional"` // seconds
	LogLevel    string `hcl:"log_level,optional"`
}

// ClientSettings configures the client command
type ClientSettings struct {
	URL            string `hcl:"url,optional"`
	Player         string `hcl:"player,optional"`
	RequestTimeout int    `hcl:"request_timeout,optional"` // seconds
}

// ProfileConfig declares an extra opponent on top of the built-in table
type ProfileConfig struct {
	Name        string             `hcl:"name,label"`
	Description string             `hcl:"description,optional"`
	Weights     map[string]float64 `hcl:"weights,optional"`
	Adaptive    bool               `hcl:"adaptive,optional"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from an HCL file. A missing file yields defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	// Blocks are optional in the file but not in the struct, so decode into
	// an intermediate with pointer blocks.
	var raw struct {
		Match    *MatchSettings  `hcl:"match,block"`
		Server   *ServerSettings `hcl:"server,block"`
		Client   *ClientSettings `hcl:"client,block"`
		Profiles []ProfileConfig `hcl:"profile,block"`
	}
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	c := &Config{Profiles: raw.Profiles}
	if raw.Match != nil {
		c.Match = *raw.Match
	}
	if raw.Server != nil {
		c.Server = *raw.Server
	}
	if raw.Client != nil {
		c.Client = *raw.Client
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Match.WinningScore == 0 {
		c.Match.WinningScore = game.DefaultWinningScore
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 300
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Client.URL == "" {
		c.Client.URL = fmt.Sprintf("http://%s:%d", c.Server.Address, c.Server.Port)
	}
	if c.Client.RequestTimeout == 0 {
		c.Client.RequestTimeout = 10
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Match.WinningScore < 1 {
		return fmt.Errorf("invalid winning score: %d", c.Match.WinningScore)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("invalid idle timeout: %d", c.Server.IdleTimeout)
	}
	if c.Client.RequestTimeout < 0 {
		return fmt.Errorf("invalid request timeout: %d", c.Client.RequestTimeout)
	}

	// Registering against a scratch copy of the defaults catches degenerate
	// weights and name clashes before anything is started.
	if err := c.ApplyProfiles(bot.DefaultRegistry()); err != nil {
		return err
	}
	return nil
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IdleTimeout returns the server idle timeout as a duration
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Server.IdleTimeout) * time.Second
}

// RequestTimeout returns the client request timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Client.RequestTimeout) * time.Second
}

// Profile converts the block into a bot profile
func (p ProfileConfig) Profile() (bot.Profile, error) {
	prof := bot.Profile{
		Name:        p.Name,
		Description: p.Description,
		Adaptive:    p.Adaptive,
	}
	if p.Adaptive {
		if len(p.Weights) > 0 {
			return bot.Profile{}, fmt.Errorf("profile %s: adaptive profiles cannot set weights", p.Name)
		}
		return prof, nil
	}
	w, err := game.ParseWeights(p.Weights)
	if err != nil {
		return bot.Profile{}, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	prof.Weights = w
	return prof, nil
}

// ApplyProfiles registers every configured profile, in file order, after
// the ones the registry already holds.
func (c *Config) ApplyProfiles(r *bot.Registry) error {
	for _, pc := range c.Profiles {
		p, err := pc.Profile()
		if err != nil {
			return err
		}
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the built-in profiles extended with the configured ones
func (c *Config) Registry() (*bot.Registry, error) {
	r := bot.DefaultRegistry()
	if err := c.ApplyProfiles(r); err != nil {
		return nil, err
	}
	return r, nil
}

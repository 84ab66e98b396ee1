package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/rpsls/internal/protocol"
	"github.com/lox/rpsls/internal/session"
	"github.com/lox/rpsls/rules"
)

// ProfilesCmd lists the opponents, built-in and configured.
type ProfilesCmd struct {
	JSON bool `help:"Print the profiles as JSON"`
}

func (c *ProfilesCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	data := session.ProfilesData(registry)

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))).
		Headers("#", "NAME", "KIND", "WEIGHTS", "DESCRIPTION")
	for _, p := range data.Profiles {
		t.Row(fmt.Sprint(p.Number), p.Name, p.Kind, formatWeights(p), p.Description)
	}
	fmt.Println(t)
	return nil
}

func formatWeights(p protocol.ProfileInfo) string {
	if len(p.Weights) == 0 {
		return "learned"
	}
	parts := make([]string, 0, rules.NumKinds)
	for _, k := range rules.Kinds() {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k.Key(), p.Weights[k.String()]))
	}
	return strings.Join(parts, " ")
}

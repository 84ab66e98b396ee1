package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/rpsls/internal/simulator"
	"github.com/lox/rpsls/internal/statistics"
	"github.com/lox/rpsls/rules"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// SimulateCmd plays two opponents against each other many times.
type SimulateCmd struct {
	A            string `arg:"" help:"First opponent (name or menu number)"`
	B            string `arg:"" help:"Second opponent (name or menu number)"`
	Matches      int    `short:"n" default:"1000" help:"Number of matches to play"`
	Seed         *int64 `help:"Deterministic RNG seed (overrides config)"`
	WinningScore int    `help:"Points needed to win a match (overrides config)"`
	MaxRounds    int    `default:"1000" help:"Abandon a match after this many rounds"`
	Workers      int    `short:"w" help:"Matches played in parallel (defaults to GOMAXPROCS)"`
	Report       string `help:"Write a JSON report to this file"`
	Quiet        bool   `short:"q" help:"Hide the progress dots"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	logger, closeLog, err := g.newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := registry.Lookup(c.A)
	if err != nil {
		return err
	}
	b, err := registry.Lookup(c.B)
	if err != nil {
		return err
	}

	seed := cfg.Match.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	score := cfg.Match.WinningScore
	if c.WinningScore > 0 {
		score = c.WinningScore
	}

	simCfg := simulator.Config{
		Matches:      c.Matches,
		ProfileA:     a,
		ProfileB:     b,
		Seed:         seed,
		WinningScore: score,
		MaxRounds:    c.MaxRounds,
		Workers:      c.Workers,
		Logger:       logger,
	}
	if !c.Quiet {
		simCfg.Progress = newDotProgress(os.Stderr).Update
	}
	sim := simulator.New(simCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	report := sim.NewReport(stats)
	printReport(report, stats)

	if c.Report != "" {
		if err := simulator.WriteReport(c.Report, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Wrote report", "file", c.Report)
	}
	return nil
}

func printReport(r simulator.Report, stats *statistics.Statistics) {
	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s vs %s", r.ProfileA, r.ProfileB)))
	fmt.Printf("Matches:       %d (first to %d, seed %d)\n", r.Matches, r.WinningScore, r.Seed)
	fmt.Printf("Wins:          %s %d, %s %d, unfinished %d\n", r.ProfileA, r.WinsA, r.ProfileB, r.WinsB, r.Unfinished)
	fmt.Printf("Win rate (%s): %.1f%% (95%% CI [%.1f%%, %.1f%%])\n", r.ProfileA, r.WinRateA*100, r.WinRateCI95[0]*100, r.WinRateCI95[1]*100)
	fmt.Printf("Rounds/match:  mean %.2f, median %.1f, sd %.2f, p90 %.1f\n", r.MeanRounds, r.MedianRounds, stats.RoundsStdDev(), stats.Percentile(0.9))
	fmt.Printf("Tie rate:      %.1f%%\n", r.TieRate*100)

	fmt.Println()
	fmt.Printf("%-10s %8s %8s\n", "gesture", r.ProfileA, r.ProfileB)
	fmt.Println(strings.Repeat("-", 28))
	for _, k := range rules.Kinds() {
		fmt.Printf("%-10s %7.1f%% %7.1f%%\n", k, r.MoveShareA[k.String()]*100, r.MoveShareB[k.String()]*100)
	}
}

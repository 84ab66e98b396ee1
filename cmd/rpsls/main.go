package main

import (
	"github.com/alecthomas/kong"

	"github.com/lox/rpsls/internal/config"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Play     PlayCmd     `cmd:"" default:"withargs" help:"Play against a computer opponent (default)"`
	Simulate SimulateCmd `cmd:"" help:"Play many matches between two opponents and report statistics"`
	Profiles ProfilesCmd `cmd:"" help:"List the opponents on offer"`
	Serve    ServeCmd    `cmd:"" help:"Run the websocket game server"`
	Client   ClientCmd   `cmd:"" help:"Play against a remote server"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rpsls"),
		kong.Description("Rock, Paper, Scissors, Lizard, Spock against adaptive computer opponents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFilename,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

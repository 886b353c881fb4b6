package main

import (
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	File     string `short:"f" default:"setforbots.hcl" help:"Config file (defaults apply when it is missing)"`
	LogLevel string `help:"Override the configured log level"`
	LogFile  string `help:"Override the configured log file"`
	NoColor  bool   `help:"Disable colour output"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Play    PlayCmd          `cmd:"" default:"1" help:"Play at the terminal against bots or friends"`
	Sim     SimCmd           `cmd:"" help:"Run bot-only games and summarise the results"`
	Config  ConfigCmd        `cmd:"" help:"Work with config files"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("setforbots"),
		kong.Description("Real-time Set for humans and bots"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

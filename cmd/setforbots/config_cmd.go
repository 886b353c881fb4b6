package main

import (
	"fmt"
	"io"
	"os"
)

// ConfigCmd groups config file commands
type ConfigCmd struct {
	Check ConfigCheckCmd `cmd:"" help:"Validate a config file and print the resolved settings"`
}

type ConfigCheckCmd struct {
	out io.Writer
}

func (c *ConfigCheckCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	r := cfg.Game.Rules
	fmt.Fprintf(out, "%s is valid\n", g.File)
	fmt.Fprintf(out, "  deck        %d features x %d values (%d cards)\n", r.FeatureCount, r.FeatureSize, r.DeckSize())
	fmt.Fprintf(out, "  table       %d slots in %d columns\n", cfg.Game.TableSize, cfg.Columns)
	if cfg.Game.TurnTimeout > 0 {
		fmt.Fprintf(out, "  countdown   %s (warn at %s)\n", cfg.Game.TurnTimeout, cfg.Game.WarningThreshold)
	} else {
		fmt.Fprintln(out, "  countdown   off (elapsed time)")
	}
	fmt.Fprintf(out, "  freezes     point %s, penalty %s\n", cfg.Game.PointFreeze, cfg.Game.PenaltyFreeze)
	for _, p := range cfg.Players {
		kind := "bot"
		if p.Human {
			kind = fmt.Sprintf("human keys %v", p.Keys)
		} else if p.BotDelay > 0 {
			kind = fmt.Sprintf("bot delay %s", p.BotDelay)
		}
		fmt.Fprintf(out, "  player      %s (%s)\n", p.Name, kind)
	}
	if cfg.Spectator != "" {
		fmt.Fprintf(out, "  spectator   %s\n", cfg.Spectator)
	}
	fmt.Fprintf(out, "  log         %s at %s\n", cfg.LogFile, cfg.LogLevel)
	return nil
}

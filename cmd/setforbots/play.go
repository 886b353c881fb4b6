package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/game"
	"github.com/lox/setforbots/internal/spectator"
	"github.com/lox/setforbots/internal/tui"
)

// PlayCmd runs one game in the terminal
type PlayCmd struct {
	Humans      *int           `help:"Number of human seats (replaces configured players)"`
	Bots        *int           `help:"Number of bot seats (replaces configured players)"`
	Seed        *int64         `help:"Deterministic RNG seed"`
	TurnTimeout *time.Duration `help:"Time before the table is reshuffled (0 shows elapsed time instead)"`
	Spectate    string         `help:"Serve a websocket spectator feed on this address"`
}

func (c *PlayCmd) apply(cfg *config.Config) {
	if c.Humans != nil || c.Bots != nil {
		humans, bots := len(cfg.Humans()), len(cfg.Players)-len(cfg.Humans())
		if c.Humans != nil {
			humans = *c.Humans
		}
		if c.Bots != nil {
			bots = *c.Bots
		}
		cfg.SetSeats(humans, bots)
	}
	if c.Seed != nil {
		cfg.Game.Seed = *c.Seed
	}
	if c.TurnTimeout != nil {
		cfg.Game.TurnTimeout = *c.TurnTimeout
	}
	if c.Spectate != "" {
		cfg.Spectator = c.Spectate
	}
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to bubbletea, so logs go to a file.
	logger, closeLog, err := openLogFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	board := display.NewBoard(cfg.Game.TableSize)
	displays := []display.Display{board, display.NewLogger(logger, cfg.Game.Rules)}
	var feed *spectator.Server
	if cfg.Spectator != "" {
		feed = spectator.NewServer(cfg.Spectator, board, cfg.Game.Rules, logger)
		displays = append(displays, feed)
	}

	sg, err := game.New(cfg.Game, cfg.Seats(), game.Options{
		Display: display.NewMulti(displays...),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	logger.Info("Starting game", "game", sg.ID, "players", len(cfg.Players), "humans", len(cfg.Humans()))

	names := make([]string, len(cfg.Players))
	keys := make(map[int][]string)
	for i, p := range cfg.Players {
		names[i] = p.Name
		if p.Human {
			keys[i] = p.Keys
		}
	}

	model := tui.NewTUIModel(tui.Options{
		Board:      board,
		Controller: sg,
		Rules:      cfg.Game.Rules,
		Names:      names,
		Keys:       keys,
		Columns:    cfg.Columns,
		Logger:     logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	var result game.Result
	eg.Go(func() error {
		var err error
		result, err = sg.Run(ctx)
		program.Send(tui.GameOverMsg{})
		return err
	})
	if feed != nil {
		feed.SetGameID(sg.ID)
		eg.Go(func() error { return feed.Start(ctx) })
	}
	eg.Go(func() error {
		<-ctx.Done()
		program.Quit()
		return nil
	})

	if _, err := program.Run(); err != nil {
		logger.Error("TUI failed", "error", err)
	}
	sg.Terminate()
	cancel()
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printResult(os.Stdout, result, names)
	fmt.Fprintf(os.Stdout, "Log written to %s\n", cfg.LogFile)
	return nil
}

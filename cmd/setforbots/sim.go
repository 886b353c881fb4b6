package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/setforbots/internal/fileutil"
	"github.com/lox/setforbots/internal/game"
)

// SimCmd plays bot-only games concurrently
type SimCmd struct {
	Games       int            `default:"10" help:"Number of games to play"`
	Bots        int            `default:"3" help:"Bots per game"`
	Parallel    int            `default:"4" help:"Games to run at once"`
	Seed        int64          `help:"Base seed; game i uses seed+i (0 for random)"`
	BotDelay    *time.Duration `help:"Override the configured bot delay"`
	TurnTimeout *time.Duration `help:"Override the configured turn timeout"`
	Out         string         `type:"path" help:"Write per-game results as JSON to this file"`

	out io.Writer
}

// simOutcome is one finished game.
type simOutcome struct {
	Result   game.Result   `json:"result"`
	Duration time.Duration `json:"durationNs"`
}

func (c *SimCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if c.Games < 1 || c.Bots < 1 || c.Parallel < 1 {
		return fmt.Errorf("games, bots and parallel must be positive")
	}
	cfg.SetSeats(0, c.Bots)
	if c.BotDelay != nil {
		cfg.Game.BotDelay = *c.BotDelay
	}
	if c.TurnTimeout != nil {
		cfg.Game.TurnTimeout = *c.TurnTimeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	outcomes := make([]simOutcome, c.Games)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.Parallel)

	var mu sync.Mutex
	done := 0
	for i := range c.Games {
		gameCfg := cfg.Game
		if c.Seed != 0 {
			gameCfg.Seed = c.Seed + int64(i)
		}
		eg.Go(func() error {
			sg, err := game.New(gameCfg, cfg.Seats(), game.Options{Logger: logger})
			if err != nil {
				return err
			}
			start := time.Now()
			result, err := sg.Run(ctx)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			outcomes[i] = simOutcome{Result: result, Duration: time.Since(start)}

			mu.Lock()
			done++
			logger.Info("Game finished", "game", i+1, "done", done, "of", c.Games, "sets", result.Sets)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	names := make([]string, len(cfg.Players))
	for i, p := range cfg.Players {
		names[i] = p.Name
	}
	printSummary(out, outcomes, names)
	if c.Out != "" {
		if err := fileutil.WriteJSON(c.Out, outcomes); err != nil {
			return err
		}
		fmt.Fprintf(out, "Results written to %s\n", c.Out)
	}
	return nil
}

// printSummary writes one line per game followed by win totals per seat.
// A tied game counts as a win for every tied seat.
func printSummary(w io.Writer, outcomes []simOutcome, names []string) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d games", len(outcomes))))

	wins := make([]int, len(names))
	sets := 0
	for i, o := range outcomes {
		r := o.Result
		id := r.GameID
		if len(id) > 8 {
			id = id[len(id)-8:]
		}
		status := o.Duration.Round(time.Millisecond).String()
		if r.Terminated {
			status += " terminated"
		}
		fmt.Fprintf(w, "%3d %s %-20s scores %v sets %d penalties %d reshuffles %d %s\n",
			i+1, dimStyle.Render(id), winnerNames(r, names), r.Scores, r.Sets, r.Penalties, r.Reshuffles,
			dimStyle.Render(status))
		for _, winner := range r.Winners {
			if winner < len(wins) {
				wins[winner]++
			}
		}
		sets += r.Sets
	}

	best := slices.Max(wins)
	fmt.Fprintln(w)
	for i, name := range names {
		line := fmt.Sprintf("%-12s %d wins", name, wins[i])
		if wins[i] == best && best > 0 {
			line = winnerStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d sets collected", sets)))
}

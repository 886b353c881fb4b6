package game

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/setforbots/internal/table"
)

// Bot generates mark events for an automated player. It presses a random
// occupied slot every delay and goes through Player.MarkSlot like any human,
// so freezes and the token cap apply to it unchanged.
type Bot struct {
	player *Player
	table  *table.Table
	clock  quartz.Clock
	rng    *rand.Rand
	delay  time.Duration
	logger *log.Logger
}

func newBot(p *Player, rng *rand.Rand, delay time.Duration) *Bot {
	return &Bot{
		player: p,
		table:  p.table,
		clock:  p.clock,
		rng:    rng,
		delay:  delay,
		logger: p.logger.WithPrefix("bot"),
	}
}

// Run presses slots until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Debug("Bot starting", "delay", b.delay)
	defer b.logger.Debug("Bot terminated")

	for {
		if slots := b.table.OccupiedSlots(); len(slots) > 0 {
			b.player.MarkSlot(slots[b.rng.IntN(len(slots))])
		}

		timer := b.clock.NewTimer(b.delay, "bot", "press")
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

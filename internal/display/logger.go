package display

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/setforbots/internal/cards"
)

// Logger writes notifications to a structured logger. Countdown updates are
// only logged when the warning state flips.
type Logger struct {
	logger *log.Logger
	rules  cards.Rules
	warn   atomic.Bool
}

// NewLogger creates a display that logs through logger.
func NewLogger(logger *log.Logger, rules cards.Rules) *Logger {
	return &Logger{logger: logger.WithPrefix("display"), rules: rules}
}

func (l *Logger) PlaceCard(card cards.Card, slot int) {
	l.logger.Debug("Card placed", "slot", slot, "card", l.rules.Describe(card))
}

func (l *Logger) RemoveCard(slot int) {
	l.logger.Debug("Card removed", "slot", slot)
}

func (l *Logger) PlaceToken(player, slot int) {
	l.logger.Debug("Token placed", "player", player, "slot", slot)
}

func (l *Logger) RemoveToken(player, slot int) {
	l.logger.Debug("Token removed", "player", player, "slot", slot)
}

func (l *Logger) SetScore(player, score int) {
	l.logger.Info("Score", "player", player, "score", score)
}

func (l *Logger) SetFreeze(player int, remaining time.Duration) {
	if remaining == NotFrozen {
		l.logger.Debug("Freeze over", "player", player)
		return
	}
	l.logger.Debug("Frozen", "player", player, "remaining", remaining.Round(time.Millisecond))
}

func (l *Logger) SetCountdown(remaining time.Duration, warn bool) {
	if l.warn.Swap(warn) != warn && warn {
		l.logger.Info("Countdown warning", "remaining", remaining.Round(time.Second))
	}
}

func (l *Logger) AnnounceWinners(players []int) {
	l.logger.Info("Winners", "players", players)
}

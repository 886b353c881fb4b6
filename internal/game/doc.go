// Package game runs a game of Set: one dealer goroutine arbitrating claims
// from any number of player goroutines that share a table of card slots.
//
// # Basic Usage
//
// Create a game with two seats and run it until no set can be formed:
//
//	g, err := game.New(game.DefaultConfig(), []game.Seat{
//	    {Name: "you", Human: true},
//	    {Name: "bot"},
//	}, game.Options{Display: board, Logger: logger})
//	result, err := g.Run(ctx)
//
// Human input arrives through Game.MarkSlot; automated seats run their own
// input generator. Game.Terminate stops the game early from any goroutine.
//
// # Claim Protocol
//
// A player marks slots with tokens (at most three). The third token turns
// the marked cards into a Claim that is pushed onto the ClaimQueue, after
// which the player blocks on the claim's verdict channel. The dealer pops
// claims in arrival order, validates them against the table as it is at
// that moment, and answers exactly the claiming player:
//   - valid: the cards leave the table, the player scores and holds for
//     Config.PointFreeze
//   - invalid or stale: the table is untouched and the player holds for
//     Config.PenaltyFreeze
//   - made before a reshuffle: cancelled, with no point and no hold
//
// Claims still queued when the countdown expires are settled before the
// table is reshuffled.
//
// Holds run on the player's goroutine. The dealer only ever waits on the
// claim queue, bounded by the countdown refresh interval.
//
// # Deterministic Testing
//
// Inject a quartz mock clock through Options.Clock and a fixed card order
// through Options.Deck; Config.Seed drives reshuffles and bot choices.
package game

package gomoku

import (
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// MatchClock is a per-player countdown. Time is charged only to the player
// on move, at the moment their move completes; unused time carries forward
// to their next turn with no replenishment. The clock never reads the wall
// clock itself: callers supply every timestamp. Until the first StartTurn no
// time elapses, so the turn before it, the opening one, is untimed.
type MatchClock struct {
	limit         time.Duration
	remaining     map[entity.Player]time.Duration
	turnStartedAt time.Time
}

func NewMatchClock(limit time.Duration) *MatchClock {
	clock := &MatchClock{limit: limit}
	clock.Reset()

	return clock
}

// Enabled reports whether the match is played with clocks at all.
func (that *MatchClock) Enabled() bool {
	return that.limit > 0
}

// Reset restores both players to the configured limit and clears the turn
// timestamp.
func (that *MatchClock) Reset() {
	that.remaining = map[entity.Player]time.Duration{
		entity.PlayerBlack: that.limit,
		entity.PlayerWhite: that.limit,
	}
	that.turnStartedAt = time.Time{}
}

// StartTurn records when the player on move began thinking.
func (that *MatchClock) StartTurn(now time.Time) {
	that.turnStartedAt = now
}

// Elapsed returns how long the current turn has been running, zero when no
// turn has started.
func (that *MatchClock) Elapsed(now time.Time) time.Duration {
	if that.turnStartedAt.IsZero() {
		return 0
	}
	return now.Sub(that.turnStartedAt)
}

func (that *MatchClock) HasExpired(player entity.Player, now time.Time) bool {
	return that.Elapsed(now) >= that.remaining[player]
}

// Charge deducts the elapsed turn time from the player's remaining budget.
func (that *MatchClock) Charge(player entity.Player, now time.Time) {
	remaining := that.remaining[player] - that.Elapsed(now)
	if remaining < 0 {
		remaining = 0
	}
	that.remaining[player] = remaining
}

func (that *MatchClock) Remaining(player entity.Player) time.Duration {
	return that.remaining[player]
}

// SetRemaining overwrites one player's budget, used when applying a
// snapshot.
func (that *MatchClock) SetRemaining(player entity.Player, remaining time.Duration) {
	that.remaining[player] = remaining
}

func (that *MatchClock) TurnStartedAt() time.Time {
	return that.turnStartedAt
}

func (that *MatchClock) SetTurnStartedAt(startedAt time.Time) {
	that.turnStartedAt = startedAt
}

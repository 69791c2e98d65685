package gomoku

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	StatusOngoing = "ongoing"
	StatusWon     = "won"
	StatusDraw    = "draw"
)

var ErrInvalidConfig = errors.New("invalid engine config")

// Config is fixed for the lifetime of a match. A MoveTimeLimit of zero
// disables the clocks entirely (hot-seat play).
type Config struct {
	BoardSize     int
	WinLength     int
	MoveTimeLimit time.Duration
}

// Engine is the state machine for one match. It exclusively owns its board,
// move history, clocks and outcome, performs no I/O, and provides no
// internal locking: a concurrent host must serialize all calls behind a
// single writer. Timestamps are always supplied by the caller, which keeps
// clock expiry deterministic.
type Engine struct {
	cfg   Config
	rules *Rules
	clock *MatchClock

	board       *entity.Board
	moves       []entity.Move
	current     entity.Player
	status      string
	winner      entity.Player
	winningLine *entity.WinningLine
	lastMove    *entity.Move

	// Pass-through metadata carried losslessly in snapshots and never
	// interpreted here.
	partyCode   string
	symbolPrefs map[string]SymbolPreference
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.BoardSize < 1 {
		return nil, fmt.Errorf("%w: board size %d", ErrInvalidConfig, cfg.BoardSize)
	}

	if cfg.WinLength < 2 || cfg.WinLength > cfg.BoardSize {
		return nil, fmt.Errorf("%w: win length %d on a %d board", ErrInvalidConfig, cfg.WinLength, cfg.BoardSize)
	}

	if cfg.MoveTimeLimit < 0 {
		return nil, fmt.Errorf("%w: negative move time limit", ErrInvalidConfig)
	}

	engine := &Engine{
		cfg:         cfg,
		rules:       NewRules(cfg.WinLength),
		clock:       NewMatchClock(cfg.MoveTimeLimit),
		board:       entity.NewBoard(cfg.BoardSize),
		current:     entity.PlayerBlack,
		status:      StatusOngoing,
		symbolPrefs: make(map[string]SymbolPreference),
	}

	return engine, nil
}

// PlaceStone - plays the current player's stone at (row, col). The move is
// rejected without mutation when the match is over, the cell is illegal, or
// the mover's clock is already spent; an expired clock means the caller
// should drive the timeout path instead.
//
// The countdown only runs while a turn is open, and a turn opens when the
// previous stone lands. The opening move of a match is therefore untimed, as
// is the first move after Reset or after applying a snapshot that carries no
// running turn.
func (that *Engine) PlaceStone(row, col int, now time.Time) error {
	if that.status != StatusOngoing {
		return apperror.ErrGameFinished
	}

	if err := that.rules.ValidateMove(that.board, row, col); err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}

	if that.clock.Enabled() && that.clock.HasExpired(that.current, now) {
		return apperror.ErrClockExpired
	}

	that.board.Place(that.current, row, col)

	move := entity.Move{Row: row, Col: col, Player: that.current}
	that.moves = append(that.moves, move)
	that.lastMove = &move

	if line := that.rules.DetectWinningLine(that.board, row, col, that.current); line != nil {
		that.status = StatusWon
		that.winner = that.current
		that.winningLine = line
		return nil
	}

	if that.board.IsFull() {
		that.status = StatusDraw
		return nil
	}

	if that.clock.Enabled() {
		that.clock.Charge(that.current, now)
	}

	that.current = that.current.Next()

	if that.clock.Enabled() {
		that.clock.StartTurn(now)
	}

	return nil
}

// UndoLastMove - removes the most recent move from the board and history
// and returns it, or nil when there is nothing to undo. Any terminal
// outcome is cleared and the turn goes back to whoever made the undone
// move. Repeated calls unwind one move at a time.
func (that *Engine) UndoLastMove() *entity.Move {
	if len(that.moves) == 0 {
		return nil
	}

	last := that.moves[len(that.moves)-1]
	that.moves = that.moves[:len(that.moves)-1]
	that.board.Clear(last.Row, last.Col)

	if n := len(that.moves); n > 0 {
		previous := that.moves[n-1]
		that.lastMove = &previous
	} else {
		that.lastMove = nil
	}

	that.status = StatusOngoing
	that.winner = entity.PlayerNone
	that.winningLine = nil
	that.current = last.Player

	return &last
}

// TimeoutCurrentPlayer - forfeits the match for the player on move. It does
// not verify expiry itself; the caller checks the clock before invoking it.
func (that *Engine) TimeoutCurrentPlayer(now time.Time) error {
	if that.status != StatusOngoing {
		return apperror.ErrGameFinished
	}

	if that.clock.Enabled() {
		that.clock.Charge(that.current, now)
	}

	that.status = StatusWon
	that.winner = that.current.Next()

	return nil
}

// Resign - forfeits the match for the given player, regardless of whose
// turn it is.
func (that *Engine) Resign(player entity.Player) error {
	if !player.IsValid() {
		return fmt.Errorf("%w: unknown player tag %q", apperror.ErrInvalidPlayer, string(player))
	}

	if that.status != StatusOngoing {
		return apperror.ErrGameFinished
	}

	that.status = StatusWon
	that.winner = player.Next()

	return nil
}

// ClockExpired reports whether the player on move has run out of time. The
// host polls this on its tick and then drives TimeoutCurrentPlayer.
func (that *Engine) ClockExpired(now time.Time) bool {
	return that.status == StatusOngoing && that.clock.Enabled() && that.clock.HasExpired(that.current, now)
}

// Reset returns the engine to a fresh match: empty board, empty history,
// Black to move, clocks back to the configured limit. Pass-through metadata
// survives a reset.
func (that *Engine) Reset() {
	that.board.Reset()
	that.moves = nil
	that.current = entity.PlayerBlack
	that.status = StatusOngoing
	that.winner = entity.PlayerNone
	that.winningLine = nil
	that.lastMove = nil
	that.clock.Reset()
}

func (that *Engine) Config() Config {
	return that.cfg
}

// Board returns a detached copy of the grid.
func (that *Engine) Board() [][]entity.Player {
	return that.board.Grid()
}

func (that *Engine) Stone(row, col int) entity.Player {
	return that.board.Stone(row, col)
}

func (that *Engine) CurrentPlayer() entity.Player {
	return that.current
}

func (that *Engine) Status() string {
	return that.status
}

func (that *Engine) Winner() entity.Player {
	return that.winner
}

func (that *Engine) IsDraw() bool {
	return that.status == StatusDraw
}

func (that *Engine) IsFinished() bool {
	return that.status != StatusOngoing
}

func (that *Engine) LastMove() *entity.Move {
	if that.lastMove == nil {
		return nil
	}
	move := *that.lastMove
	return &move
}

func (that *Engine) WinningLine() *entity.WinningLine {
	if that.winningLine == nil {
		return nil
	}
	line := *that.winningLine
	return &line
}

// Moves returns a copy of the move history, oldest first.
func (that *Engine) Moves() []entity.Move {
	return append([]entity.Move(nil), that.moves...)
}

func (that *Engine) TimeRemaining(player entity.Player) time.Duration {
	return that.clock.Remaining(player)
}

func (that *Engine) PartyCode() string {
	return that.partyCode
}

func (that *Engine) SetPartyCode(code string) {
	that.partyCode = code
}

// SetSymbolPreference stores an opaque per-identity display preference that
// rides along in snapshots.
func (that *Engine) SetSymbolPreference(identity string, pref SymbolPreference) {
	that.symbolPrefs[identity] = pref
}

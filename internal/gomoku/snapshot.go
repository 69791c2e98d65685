package gomoku

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// GameStateVersion is written into every snapshot. Decoding stays tolerant
// of older snapshots that omit newer optional fields.
const GameStateVersion = 1

// SymbolPreference is an opaque pair of display choices one player made on
// their own device. The core carries it through snapshots untouched.
type SymbolPreference struct {
	Symbol string `json:"symbol"`
	Size   string `json:"size"`
}

// GameState is the flat serializable snapshot exchanged between two copies
// of a match. It is a detached value: mutating it never affects a live
// engine.
type GameState struct {
	Version       int           `json:"version"`
	Board         [][]string    `json:"board"`
	Moves         []entity.Move `json:"moves,omitempty"`
	CurrentPlayer string        `json:"currentPlayer"`
	Winner        string        `json:"winner,omitempty"`
	IsDraw        bool          `json:"isDraw"`

	LastMove    *entity.Move        `json:"lastMove,omitempty"`
	WinningLine *entity.WinningLine `json:"winningLine,omitempty"`

	PartyCode               string                      `json:"partyCode,omitempty"`
	PlayerSymbolPreferences map[string]SymbolPreference `json:"playerSymbolPreferences,omitempty"`

	BlackTimeRemaining *float64 `json:"blackTimeRemaining,omitempty"`
	WhiteTimeRemaining *float64 `json:"whiteTimeRemaining,omitempty"`
	TurnStartedAt      *int64   `json:"turnStartedAt,omitempty"`
}

// EncodeGameState serializes a snapshot to its wire form.
func EncodeGameState(state *GameState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("could not marshal game state: %w", err)
	}

	return data, nil
}

// DecodeGameState parses and structurally validates a snapshot. Optional
// fields default to absent so snapshots from older protocol versions still
// decode; a missing board or current player, a ragged grid, or an unknown
// player tag is malformed.
func DecodeGameState(data []byte) (*GameState, error) {
	var state GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedSnapshot, err)
	}

	if err := validateGameState(&state); err != nil {
		return nil, err
	}

	return &state, nil
}

func validateGameState(state *GameState) error {
	if len(state.Board) == 0 {
		return fmt.Errorf("%w: missing board", apperror.ErrMalformedSnapshot)
	}

	for row := range state.Board {
		if len(state.Board[row]) != len(state.Board) {
			return fmt.Errorf("%w: board is not square", apperror.ErrMalformedSnapshot)
		}

		for col := range state.Board[row] {
			if tag := entity.Player(state.Board[row][col]); tag != entity.PlayerNone && !tag.IsValid() {
				return fmt.Errorf("%w: unknown player tag %q", apperror.ErrMalformedSnapshot, state.Board[row][col])
			}
		}
	}

	if !entity.Player(state.CurrentPlayer).IsValid() {
		return fmt.Errorf("%w: unknown current player %q", apperror.ErrMalformedSnapshot, state.CurrentPlayer)
	}

	if state.Winner != "" && !entity.Player(state.Winner).IsValid() {
		return fmt.Errorf("%w: unknown winner %q", apperror.ErrMalformedSnapshot, state.Winner)
	}

	for _, move := range state.Moves {
		if !move.Player.IsValid() {
			return fmt.Errorf("%w: unknown player tag %q in moves", apperror.ErrMalformedSnapshot, move.Player)
		}
	}

	if state.LastMove != nil && !state.LastMove.Player.IsValid() {
		return fmt.Errorf("%w: unknown player tag %q in last move", apperror.ErrMalformedSnapshot, state.LastMove.Player)
	}

	if state.WinningLine != nil && !state.WinningLine.Player.IsValid() {
		return fmt.Errorf("%w: unknown player tag %q in winning line", apperror.ErrMalformedSnapshot, state.WinningLine.Player)
	}

	return nil
}

// ToSnapshot produces a fully independent copy of the engine's observable
// state, including the pass-through metadata.
func (that *Engine) ToSnapshot() *GameState {
	grid := that.board.Grid()
	board := make([][]string, len(grid))
	for row := range grid {
		board[row] = make([]string, len(grid[row]))
		for col := range grid[row] {
			board[row][col] = string(grid[row][col])
		}
	}

	state := &GameState{
		Version:       GameStateVersion,
		Board:         board,
		CurrentPlayer: string(that.current),
		IsDraw:        that.status == StatusDraw,
		PartyCode:     that.partyCode,
		LastMove:      that.LastMove(),
		WinningLine:   that.WinningLine(),
	}

	if len(that.moves) > 0 {
		state.Moves = append([]entity.Move(nil), that.moves...)
	}

	if that.status == StatusWon {
		state.Winner = string(that.winner)
	}

	if len(that.symbolPrefs) > 0 {
		prefs := make(map[string]SymbolPreference, len(that.symbolPrefs))
		for identity, pref := range that.symbolPrefs {
			prefs[identity] = pref
		}
		state.PlayerSymbolPreferences = prefs
	}

	if that.clock.Enabled() {
		blackSeconds := that.clock.Remaining(entity.PlayerBlack).Seconds()
		whiteSeconds := that.clock.Remaining(entity.PlayerWhite).Seconds()
		state.BlackTimeRemaining = &blackSeconds
		state.WhiteTimeRemaining = &whiteSeconds

		if startedAt := that.clock.TurnStartedAt(); !startedAt.IsZero() {
			millis := startedAt.UnixMilli()
			state.TurnStartedAt = &millis
		}
	}

	return state
}

// ApplySnapshot - wholesale replaces the engine's state with the snapshot.
// The snapshot is trusted as the new ground truth: the local move history is
// discarded, not merged. Validation runs before any mutation, so a
// malformed snapshot leaves the engine untouched.
func (that *Engine) ApplySnapshot(state *GameState) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", apperror.ErrMalformedSnapshot)
	}

	if err := validateGameState(state); err != nil {
		return err
	}

	if len(state.Board) != that.cfg.BoardSize {
		return fmt.Errorf("%w: board is %dx%d, want %dx%d",
			apperror.ErrMalformedSnapshot, len(state.Board), len(state.Board), that.cfg.BoardSize, that.cfg.BoardSize)
	}

	grid := make([][]entity.Player, len(state.Board))
	for row := range state.Board {
		grid[row] = make([]entity.Player, len(state.Board[row]))
		for col := range state.Board[row] {
			grid[row][col] = entity.Player(state.Board[row][col])
		}
	}

	that.board.Replace(grid)
	that.current = entity.Player(state.CurrentPlayer)

	switch {
	case state.Winner != "":
		that.status = StatusWon
		that.winner = entity.Player(state.Winner)
	case state.IsDraw:
		that.status = StatusDraw
		that.winner = entity.PlayerNone
	default:
		that.status = StatusOngoing
		that.winner = entity.PlayerNone
	}

	// The received snapshot becomes the new ground truth; local history is
	// not reconciled against it.
	that.moves = nil

	if state.LastMove != nil {
		move := *state.LastMove
		that.lastMove = &move
	} else {
		that.lastMove = nil
	}

	if state.WinningLine != nil {
		line := *state.WinningLine
		that.winningLine = &line
	} else {
		that.winningLine = nil
	}

	that.partyCode = state.PartyCode
	that.symbolPrefs = make(map[string]SymbolPreference, len(state.PlayerSymbolPreferences))
	for identity, pref := range state.PlayerSymbolPreferences {
		that.symbolPrefs[identity] = pref
	}

	that.clock.Reset()
	if state.BlackTimeRemaining != nil {
		that.clock.SetRemaining(entity.PlayerBlack, secondsToDuration(*state.BlackTimeRemaining))
	}
	if state.WhiteTimeRemaining != nil {
		that.clock.SetRemaining(entity.PlayerWhite, secondsToDuration(*state.WhiteTimeRemaining))
	}
	if state.TurnStartedAt != nil {
		that.clock.SetTurnStartedAt(time.UnixMilli(*state.TurnStartedAt))
	}

	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

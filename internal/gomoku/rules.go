package gomoku

import (
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// lineDirections are scanned in this exact order: vertical, horizontal,
// diagonal down-right, diagonal down-left. The first direction reaching the
// win length is the one reported, which keeps winning lines stable across
// snapshots when an overline satisfies two directions at once.
var lineDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Rules evaluates move legality and win conditions over a board. It is
// configured once and holds no mutable state.
type Rules struct {
	winLength int
}

func NewRules(winLength int) *Rules {
	return &Rules{winLength: winLength}
}

// ValidateMove - checks that the coordinate is in bounds, free, and touches
// existing play. The very first stone of a match may go anywhere.
func (that *Rules) ValidateMove(board *entity.Board, row, col int) error {
	if !board.InBounds(row, col) {
		return apperror.ErrOutOfBounds
	}

	if !board.IsEmpty(row, col) {
		return apperror.ErrCellOccupied
	}

	if board.HasAnyStone() && !board.HasAdjacentStone(row, col) {
		return apperror.ErrNotAdjacent
	}

	return nil
}

func (that *Rules) IsValidMove(board *entity.Board, row, col int) bool {
	return that.ValidateMove(board, row, col) == nil
}

func (that *Rules) IsWinningMove(board *entity.Board, row, col int, player entity.Player) bool {
	return that.DetectWinningLine(board, row, col, player) != nil
}

// DetectWinningLine - scans the four axis directions through the placed
// stone and returns the maximal run once it reaches the win length, or nil.
func (that *Rules) DetectWinningLine(board *entity.Board, row, col int, player entity.Player) *entity.WinningLine {
	for _, dir := range lineDirections {
		forward := countRun(board, row, col, dir[0], dir[1], player)
		backward := countRun(board, row, col, -dir[0], -dir[1], player)

		if 1+forward+backward < that.winLength {
			continue
		}

		return &entity.WinningLine{
			StartRow: row - backward*dir[0],
			StartCol: col - backward*dir[1],
			EndRow:   row + forward*dir[0],
			EndCol:   col + forward*dir[1],
			Player:   player,
		}
	}

	return nil
}

// countRun counts consecutive stones of the player strictly beyond
// (row, col) in the given direction.
func countRun(board *entity.Board, row, col, dr, dc int, player entity.Player) int {
	count := 0
	for r, c := row+dr, col+dc; board.Stone(r, c) == player; r, c = r+dr, c+dc {
		count++
	}
	return count
}

package entity

// Board is a square grid of stones. Cells hold PlayerNone when empty.
// One Board belongs to exactly one engine; callers that need a detached
// copy go through Grid.
type Board struct {
	size  int
	cells [][]Player
}

// NewBoard creates an empty size×size board.
func NewBoard(size int) *Board {
	board := &Board{size: size}
	board.Reset()

	return board
}

// Reset clears every cell in place.
func (that *Board) Reset() {
	cells := make([][]Player, that.size)
	for row := range cells {
		cells[row] = make([]Player, that.size)
	}
	that.cells = cells
}

// Replace overwrites the whole grid at once, used when applying a remote
// snapshot. The caller must pass a size×size grid; the shape is not
// validated here.
func (that *Board) Replace(grid [][]Player) {
	cells := make([][]Player, len(grid))
	for row := range grid {
		cells[row] = append([]Player(nil), grid[row]...)
	}
	that.cells = cells
}

func (that *Board) Size() int {
	return that.size
}

func (that *Board) InBounds(row, col int) bool {
	return row >= 0 && row < that.size && col >= 0 && col < that.size
}

// IsEmpty reports whether the cell is free. Out-of-bounds coordinates are
// never empty.
func (that *Board) IsEmpty(row, col int) bool {
	return that.InBounds(row, col) && that.cells[row][col] == PlayerNone
}

// Stone returns the occupant of the cell, PlayerNone when empty or out of
// bounds.
func (that *Board) Stone(row, col int) Player {
	if !that.InBounds(row, col) {
		return PlayerNone
	}
	return that.cells[row][col]
}

// Place puts a stone on the cell. Out-of-bounds coordinates are ignored.
func (that *Board) Place(player Player, row, col int) {
	if !that.InBounds(row, col) {
		return
	}
	that.cells[row][col] = player
}

// Clear removes the stone from the cell, used only when undoing the most
// recent move.
func (that *Board) Clear(row, col int) {
	if !that.InBounds(row, col) {
		return
	}
	that.cells[row][col] = PlayerNone
}

func (that *Board) HasAnyStone() bool {
	for row := range that.cells {
		for col := range that.cells[row] {
			if that.cells[row][col] != PlayerNone {
				return true
			}
		}
	}
	return false
}

func (that *Board) IsFull() bool {
	for row := range that.cells {
		for col := range that.cells[row] {
			if that.cells[row][col] == PlayerNone {
				return false
			}
		}
	}
	return true
}

// HasAdjacentStone scans the 8 surrounding cells for a stone of either
// player. Off-board neighbors count as absent.
func (that *Board) HasAdjacentStone(row, col int) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			neighborRow, neighborCol := row+dr, col+dc
			if that.InBounds(neighborRow, neighborCol) && that.cells[neighborRow][neighborCol] != PlayerNone {
				return true
			}
		}
	}
	return false
}

// Grid returns a deep copy of the cells, row-major.
func (that *Board) Grid() [][]Player {
	grid := make([][]Player, that.size)
	for row := range that.cells {
		grid[row] = append([]Player(nil), that.cells[row]...)
	}
	return grid
}

package apperror

import "errors"

var (
	ErrOutOfBounds       = errors.New("coordinate is out of bounds")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrNotAdjacent       = errors.New("cell is not adjacent to any stone")
	ErrGameFinished      = errors.New("game is already finished")
	ErrInvalidPlayer     = errors.New("invalid player")
	ErrClockExpired      = errors.New("move time has expired")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrMatchNotFound     = errors.New("match not found")
)

package entity

const (
	PlayerNone  Player = ""
	PlayerBlack Player = "B"
	PlayerWhite Player = "W"
)

// Player marks one of the two sides of a match. Black always moves first.
type Player string

// Next returns the player whose turn follows this one.
func (that Player) Next() Player {
	if that == PlayerBlack {
		return PlayerWhite
	}
	return PlayerBlack
}

func (that Player) IsValid() bool {
	return that == PlayerBlack || that == PlayerWhite
}

// Label returns the human-readable name of the player.
func (that Player) Label() string {
	switch that {
	case PlayerBlack:
		return "Black"
	case PlayerWhite:
		return "White"
	default:
		return "None"
	}
}

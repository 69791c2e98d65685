package entity

// Move records a single placed stone. The ordered move history is the
// authoritative record of a match; replaying it onto an empty board must
// reproduce the board exactly.
type Move struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Player Player `json:"player"`
}

// WinningLine describes the maximal contiguous run of stones through the
// winning move. Endpoints span the full run, so an overline of six or more
// reports its whole extent.
type WinningLine struct {
	StartRow int    `json:"startRow"`
	StartCol int    `json:"startCol"`
	EndRow   int    `json:"endRow"`
	EndCol   int    `json:"endCol"`
	Player   Player `json:"player"`
}

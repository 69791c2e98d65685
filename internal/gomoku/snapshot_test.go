package gomoku

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

func TestEngine_SnapshotRoundTrip(t *testing.T) {
	// Given: a clocked match with some play and pass-through metadata
	cfg := Config{BoardSize: 15, WinLength: 5, MoveTimeLimit: 30 * time.Second}
	engine := newTestEngine(t, cfg)
	engine.SetPartyCode("party-7")
	engine.SetSymbolPreference("device-a", SymbolPreference{Symbol: "cat", Size: "large"})

	require.NoError(t, engine.PlaceStone(7, 7, testNow))
	require.NoError(t, engine.PlaceStone(8, 8, testNow.Add(5*time.Second)))
	require.NoError(t, engine.PlaceStone(7, 8, testNow.Add(9*time.Second)))

	// When: the snapshot is encoded, decoded, and applied to a fresh engine
	// of matching configuration
	state := engine.ToSnapshot()
	data, err := EncodeGameState(state)
	require.NoError(t, err)

	decoded, err := DecodeGameState(data)
	require.NoError(t, err)

	fresh := newTestEngine(t, cfg)
	require.NoError(t, fresh.ApplySnapshot(decoded))

	// Then: every observable field matches, and the move history is empty
	// by design
	assert.Equal(t, engine.Board(), fresh.Board())
	assert.Equal(t, engine.CurrentPlayer(), fresh.CurrentPlayer())
	assert.Equal(t, engine.Status(), fresh.Status())
	assert.Equal(t, engine.LastMove(), fresh.LastMove())
	assert.Equal(t, engine.WinningLine(), fresh.WinningLine())
	assert.Equal(t, engine.TimeRemaining(entity.PlayerBlack), fresh.TimeRemaining(entity.PlayerBlack))
	assert.Equal(t, engine.TimeRemaining(entity.PlayerWhite), fresh.TimeRemaining(entity.PlayerWhite))
	assert.Equal(t, "party-7", fresh.PartyCode())
	assert.Empty(t, fresh.Moves())

	// Then: a second snapshot differs from the first only in the dropped
	// history
	expected := *state
	expected.Moves = nil
	assert.Equal(t, &expected, fresh.ToSnapshot())
}

func TestEngine_SnapshotRoundTrip_FinishedMatch(t *testing.T) {
	// Given: a match black has won
	engine := standardEngine(t)
	playMoves(t, engine, blackWinsHorizontally)

	// When: the snapshot lands on a fresh engine
	fresh := standardEngine(t)
	require.NoError(t, fresh.ApplySnapshot(engine.ToSnapshot()))

	// Then: the terminal outcome and winning line carry over
	assert.Equal(t, StatusWon, fresh.Status())
	assert.Equal(t, entity.PlayerBlack, fresh.Winner())
	assert.Equal(t, engine.WinningLine(), fresh.WinningLine())
}

func TestEngine_Snapshot_IsDetached(t *testing.T) {
	// Given: a snapshot of a live engine
	engine := standardEngine(t)
	require.NoError(t, engine.PlaceStone(7, 7, testNow))
	state := engine.ToSnapshot()

	// When: the snapshot is mutated
	state.Board[7][7] = "W"
	state.CurrentPlayer = "B"

	// Then: the live engine is unaffected
	assert.Equal(t, entity.PlayerBlack, engine.Stone(7, 7))
	assert.Equal(t, entity.PlayerWhite, engine.CurrentPlayer())
}

func TestEngine_ApplySnapshot_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		state *GameState
	}{
		{
			name: "Wrong size board",
			state: &GameState{
				Board:         [][]string{{"", ""}, {"", ""}},
				CurrentPlayer: "B",
			},
		},
		{
			name: "Unknown player tag on the board",
			state: func() *GameState {
				state := standardEngine(t).ToSnapshot()
				state.Board[3][3] = "Q"
				return state
			}(),
		},
		{
			name: "Unknown current player",
			state: func() *GameState {
				state := standardEngine(t).ToSnapshot()
				state.CurrentPlayer = "purple"
				return state
			}(),
		},
		{
			name:  "Missing board",
			state: &GameState{CurrentPlayer: "B"},
		},
		{
			name:  "Nil state",
			state: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Given: an engine with some play on it
			engine := standardEngine(t)
			require.NoError(t, engine.PlaceStone(7, 7, testNow))
			before := engine.ToSnapshot()

			// When: the malformed snapshot is applied
			err := engine.ApplySnapshot(tc.state)

			// Then: the error is typed and the engine is untouched
			require.ErrorIs(t, err, apperror.ErrMalformedSnapshot)
			assert.Equal(t, before, engine.ToSnapshot())
		})
	}
}

func TestDecodeGameState(t *testing.T) {
	t.Run("Tolerates a minimal older snapshot", func(t *testing.T) {
		// Given: a snapshot with only the required fields, as an older
		// protocol version would send
		data := []byte(`{"board":[["","",""],["","B",""],["","",""]],"currentPlayer":"W"}`)

		// When: it is decoded
		state, err := DecodeGameState(data)

		// Then: optional fields default to absent
		require.NoError(t, err)
		assert.Equal(t, "W", state.CurrentPlayer)
		assert.Empty(t, state.Moves)
		assert.Nil(t, state.LastMove)
		assert.Nil(t, state.WinningLine)
		assert.Nil(t, state.BlackTimeRemaining)
		assert.Nil(t, state.TurnStartedAt)
		assert.Empty(t, state.PartyCode)
	})

	t.Run("Preserves pass-through metadata", func(t *testing.T) {
		// Given: a snapshot carrying party metadata the core never
		// interprets
		data := []byte(`{
			"board":[["",""],["","B"]],
			"currentPlayer":"W",
			"partyCode":"XK-42",
			"playerSymbolPreferences":{"alice":{"symbol":"heart","size":"small"}}
		}`)

		// When: it round-trips through decode and encode
		state, err := DecodeGameState(data)
		require.NoError(t, err)

		encoded, err := EncodeGameState(state)
		require.NoError(t, err)

		reparsed, err := DecodeGameState(encoded)
		require.NoError(t, err)

		// Then: the metadata is intact
		assert.Equal(t, "XK-42", reparsed.PartyCode)
		assert.Equal(t, SymbolPreference{Symbol: "heart", Size: "small"}, reparsed.PlayerSymbolPreferences["alice"])
	})

	t.Run("Rejects malformed input", func(t *testing.T) {
		malformed := map[string][]byte{
			"not json":               []byte(`{"board":`),
			"missing board":          []byte(`{"currentPlayer":"B"}`),
			"ragged grid":            []byte(`{"board":[["",""],[""]],"currentPlayer":"B"}`),
			"unknown board tag":      []byte(`{"board":[["Z",""],["",""]],"currentPlayer":"B"}`),
			"missing current player": []byte(`{"board":[["",""],["",""]]}`),
			"unknown winner":         []byte(`{"board":[["",""],["",""]],"currentPlayer":"B","winner":"Z"}`),
		}

		for name, data := range malformed {
			t.Run(name, func(t *testing.T) {
				_, err := DecodeGameState(data)
				assert.ErrorIs(t, err, apperror.ErrMalformedSnapshot)
			})
		}
	})
}

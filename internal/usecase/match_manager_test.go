package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// memoryRepo is an in-memory snapshotRepo so manager flows can be tested
// without a live Redis; the repository itself is covered by its own suite.
type memoryRepo struct {
	states map[string][]byte
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{states: make(map[string][]byte)}
}

func (that *memoryRepo) Save(_ context.Context, state *gomoku.GameState) error {
	data, err := gomoku.EncodeGameState(state)
	if err != nil {
		return err
	}
	that.states[state.PartyCode] = data
	return nil
}

func (that *memoryRepo) GetByPartyCode(_ context.Context, code string) (*gomoku.GameState, error) {
	data, ok := that.states[code]
	if !ok {
		return nil, fmt.Errorf("%w: party %s", apperror.ErrSnapshotNotFound, code)
	}
	return gomoku.DecodeGameState(data)
}

func (that *memoryRepo) DeleteByPartyCode(_ context.Context, code string) error {
	delete(that.states, code)
	return nil
}

func newTestManager(t *testing.T, repo snapshotRepo, cfg gomoku.Config) *MatchManager {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	manager := NewMatchManager(logger, repo, cfg)
	manager.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	return manager
}

var standardConfig = gomoku.Config{BoardSize: 15, WinLength: 5}

func TestMatchManager_CreateMatch(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	manager := newTestManager(t, repo, standardConfig)

	// When: a match is created
	state, err := manager.CreateMatch(ctx)

	// Then: it has a party code and the initial snapshot is persisted
	require.NoError(t, err)
	require.NotEmpty(t, state.PartyCode)
	assert.Equal(t, "B", state.CurrentPlayer)

	stored, err := repo.GetByPartyCode(ctx, state.PartyCode)
	require.NoError(t, err)
	assert.Equal(t, state, stored)
}

func TestMatchManager_PlaceStone(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	manager := newTestManager(t, repo, standardConfig)

	state, err := manager.CreateMatch(ctx)
	require.NoError(t, err)
	code := state.PartyCode

	// When: black opens at the center
	state, err = manager.PlaceStone(ctx, code, 7, 7)

	// Then: the move landed, the turn passed, and the snapshot was persisted
	require.NoError(t, err)
	assert.Equal(t, "B", state.Board[7][7])
	assert.Equal(t, "W", state.CurrentPlayer)

	stored, err := repo.GetByPartyCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "B", stored.Board[7][7])

	// When: white answers with an illegal far-away move
	_, err = manager.PlaceStone(ctx, code, 0, 0)

	// Then: the legality error surfaces
	assert.ErrorIs(t, err, apperror.ErrNotAdjacent)
}

func TestMatchManager_UnknownParty(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, newMemoryRepo(), standardConfig)

	_, err := manager.PlaceStone(ctx, "missing", 7, 7)
	assert.ErrorIs(t, err, apperror.ErrMatchNotFound)

	_, err = manager.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrMatchNotFound)
}

func TestMatchManager_RehydratesFromRepository(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()

	// Given: a match created and played by one process
	first := newTestManager(t, repo, standardConfig)
	state, err := first.CreateMatch(ctx)
	require.NoError(t, err)
	code := state.PartyCode

	_, err = first.PlaceStone(ctx, code, 7, 7)
	require.NoError(t, err)

	// When: a second process serves the next move for the same party
	second := newTestManager(t, repo, standardConfig)
	state, err = second.PlaceStone(ctx, code, 8, 8)

	// Then: the rehydrated engine carried the position
	require.NoError(t, err)
	assert.Equal(t, "B", state.Board[7][7])
	assert.Equal(t, "W", state.Board[8][8])
	assert.Equal(t, "B", state.CurrentPlayer)
}

func TestMatchManager_UndoLastMove(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	manager := newTestManager(t, repo, standardConfig)

	state, err := manager.CreateMatch(ctx)
	require.NoError(t, err)
	code := state.PartyCode

	_, err = manager.PlaceStone(ctx, code, 7, 7)
	require.NoError(t, err)

	// When: the move is undone
	state, err = manager.UndoLastMove(ctx, code)

	// Then: the board is empty and black is on move again
	require.NoError(t, err)
	assert.Equal(t, "", state.Board[7][7])
	assert.Equal(t, "B", state.CurrentPlayer)

	// When: there is nothing left to undo
	state, err = manager.UndoLastMove(ctx, code)

	// Then: the call is a harmless no-op
	require.NoError(t, err)
	assert.Equal(t, "B", state.CurrentPlayer)
}

func TestMatchManager_Resign(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, newMemoryRepo(), standardConfig)

	state, err := manager.CreateMatch(ctx)
	require.NoError(t, err)

	// When: black resigns
	state, err = manager.Resign(ctx, state.PartyCode, "B")

	// Then: white wins
	require.NoError(t, err)
	assert.Equal(t, "W", state.Winner)

	// When: an unknown tag resigns
	_, err = manager.Resign(ctx, state.PartyCode, "Z")
	assert.ErrorIs(t, err, apperror.ErrInvalidPlayer)
}

func TestMatchManager_CheckTimeout(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	cfg := gomoku.Config{BoardSize: 15, WinLength: 5, MoveTimeLimit: 10 * time.Second}
	manager := newTestManager(t, repo, cfg)

	base := time.UnixMilli(1_700_000_000_000)
	manager.now = func() time.Time { return base }

	state, err := manager.CreateMatch(ctx)
	require.NoError(t, err)
	code := state.PartyCode

	// Given: black opened, so white's clock is running
	_, err = manager.PlaceStone(ctx, code, 7, 7)
	require.NoError(t, err)

	// When: the tick fires before expiry
	state, forfeited, err := manager.CheckTimeout(ctx, code)
	require.NoError(t, err)
	assert.False(t, forfeited)
	assert.Empty(t, state.Winner)

	// When: the tick fires after white's budget is gone
	manager.now = func() time.Time { return base.Add(11 * time.Second) }
	state, forfeited, err = manager.CheckTimeout(ctx, code)

	// Then: white forfeits on time and black wins
	require.NoError(t, err)
	assert.True(t, forfeited)
	assert.Equal(t, "B", state.Winner)

	// Then: the terminal snapshot was persisted
	stored, err := repo.GetByPartyCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "B", stored.Winner)
}

func TestMatchManager_PushSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	manager := newTestManager(t, repo, standardConfig)

	// Given: a peer's snapshot for a party this process has never seen
	engine, err := gomoku.NewEngine(standardConfig)
	require.NoError(t, err)
	engine.SetPartyCode("party-from-peer")
	require.NoError(t, engine.PlaceStone(7, 7, time.UnixMilli(1_700_000_000_000)))

	raw, err := gomoku.EncodeGameState(engine.ToSnapshot())
	require.NoError(t, err)

	// When: the blob is pushed
	state, err := manager.PushSnapshot(ctx, raw)

	// Then: it becomes the party's ground truth, with history dropped
	require.NoError(t, err)
	assert.Equal(t, "B", state.Board[7][7])
	assert.Equal(t, "W", state.CurrentPlayer)
	assert.Empty(t, state.Moves)

	stored, err := repo.GetByPartyCode(ctx, "party-from-peer")
	require.NoError(t, err)
	assert.Equal(t, "B", stored.Board[7][7])
}

func TestMatchManager_PushSnapshot_Malformed(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	manager := newTestManager(t, repo, standardConfig)

	tests := map[string][]byte{
		"not json":           []byte(`{"board"`),
		"missing party code": []byte(`{"board":[["",""],["",""]],"currentPlayer":"B"}`),
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := manager.PushSnapshot(ctx, raw)

			require.ErrorIs(t, err, apperror.ErrMalformedSnapshot)
			assert.Empty(t, repo.states)
		})
	}
}

func TestMatchManager_DeleteMatch(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	manager := newTestManager(t, repo, standardConfig)

	state, err := manager.CreateMatch(ctx)
	require.NoError(t, err)

	// When: the match is deleted
	require.NoError(t, manager.DeleteMatch(ctx, state.PartyCode))

	// Then: it is gone from both the live set and the repository
	_, err = manager.Snapshot(ctx, state.PartyCode)
	assert.ErrorIs(t, err, apperror.ErrMatchNotFound)
}
